package repositories

import (
	"errors"
	"fmt"

	"staffdir/internal/models"

	"gorm.io/gorm"
)

// GORMEmployeeRepository is a GORM implementation of EmployeeRepository.
type GORMEmployeeRepository struct {
	db *gorm.DB
}

// NewGORMEmployeeRepository creates a new instance of GORMEmployeeRepository.
func NewGORMEmployeeRepository(db *gorm.DB) *GORMEmployeeRepository {
	return &GORMEmployeeRepository{
		db: db,
	}
}

// GetAll retrieves all employees in insertion order.
func (r *GORMEmployeeRepository) GetAll() ([]models.Employee, error) {
	var employees []models.Employee
	if err := r.db.Order("id").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to get all employees: %w", err)
	}
	return employees, nil
}

// GetByID retrieves a single employee by its ID.
func (r *GORMEmployeeRepository) GetByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("employee with ID %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get employee by ID %d: %w", id, err)
	}
	return &employee, nil
}

// GetByEmail retrieves a single employee by email.
func (r *GORMEmployeeRepository) GetByEmail(email string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.First(&employee, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("employee with email %s: %w", email, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get employee by email %s: %w", email, err)
	}
	return &employee, nil
}

// Create persists a new employee. The ID is assigned by the database
// sequence, never computed from a record count.
func (r *GORMEmployeeRepository) Create(employee *models.Employee) error {
	if err := r.db.Create(employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("employee with email %s: %w", employee.Email, models.ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// Update saves all fields of an existing employee.
func (r *GORMEmployeeRepository) Update(employee *models.Employee) error {
	res := r.db.Save(employee)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("employee with email %s: %w", employee.Email, models.ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Save does not return ErrRecordNotFound when no rows match,
		// so we check RowsAffected.
		return fmt.Errorf("employee with ID %d: %w", employee.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes an employee by its ID.
func (r *GORMEmployeeRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Employee{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("employee with ID %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Counts recomputes the total and active employee counts.
func (r *GORMEmployeeRepository) Counts() (int64, int64, error) {
	var total, active int64
	if err := r.db.Model(&models.Employee{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count employees: %w", err)
	}
	if err := r.db.Model(&models.Employee{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count active employees: %w", err)
	}
	return total, active, nil
}
