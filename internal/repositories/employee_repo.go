package repositories

import "staffdir/internal/models"

// EmployeeRepository defines the interface for employee data access.
type EmployeeRepository interface {
	GetAll() ([]models.Employee, error)
	GetByID(id uint) (*models.Employee, error)
	GetByEmail(email string) (*models.Employee, error)
	Create(employee *models.Employee) error
	Update(employee *models.Employee) error
	Delete(id uint) error
	// Counts returns the total and active record counts, recomputed
	// from the store on every call.
	Counts() (total int64, active int64, err error)
}
