package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"staffdir/internal/metrics"
	"staffdir/internal/models"
	"staffdir/internal/repositories"
	"staffdir/internal/uploads"
)

// EventPublisher publishes employee lifecycle events to the message
// broker. Implementations marshal the payload to JSON.
type EventPublisher interface {
	PublishEmployeeEvent(event string, payload interface{}) error
}

// Counts carries the fresh total/active record counts returned by
// delete and status operations.
type Counts struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// EmployeeUpdate is the input for a partial update. Nil fields are left
// unchanged, which is the only way a flat multipart form can express
// "not supplied" versus "set to empty".
//
// ExistingImage is a transient directive: when no new file is uploaded
// it tells the service which image reference to keep. It is never
// persisted as a record attribute.
type EmployeeUpdate struct {
	Name          *string
	Email         *string
	Mobile        *string
	Designation   *string
	Gender        *string
	Courses       *[]string
	ExistingImage *string
}

// EmployeeService orchestrates the employee store and the upload store
// to implement list/get/create/update/delete/set-status.
type EmployeeService struct {
	repo    repositories.EmployeeRepository
	uploads *uploads.Store
	events  EventPublisher
	metrics *metrics.Metrics
}

// NewEmployeeService creates a new EmployeeService. events may be nil
// when no message broker is configured.
func NewEmployeeService(repo repositories.EmployeeRepository, uploadStore *uploads.Store, events EventPublisher, m *metrics.Metrics) *EmployeeService {
	return &EmployeeService{
		repo:    repo,
		uploads: uploadStore,
		events:  events,
		metrics: m,
	}
}

// GetAllEmployees retrieves all employees in insertion order.
func (s *EmployeeService) GetAllEmployees() ([]models.Employee, error) {
	return s.repo.GetAll()
}

// GetEmployeeByID retrieves a single employee by its ID.
func (s *EmployeeService) GetEmployeeByID(id uint) (*models.Employee, error) {
	return s.repo.GetByID(id)
}

// CreateEmployee persists a new employee. If an image file accompanies
// the request it is stored first and its reference recorded. Creation
// timestamp defaults to now and the active flag to true.
func (s *EmployeeService) CreateEmployee(employee *models.Employee, image *multipart.FileHeader) (*models.Employee, error) {
	if existing, err := s.repo.GetByEmail(employee.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email %q: %w", employee.Email, models.ErrDuplicateEmail)
	} else if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if image != nil {
		ref, err := s.uploads.Save(image)
		if err != nil {
			return nil, fmt.Errorf("failed to store employee image: %w", err)
		}
		employee.Image = ref
		s.metrics.UploadedBytes.Add(float64(image.Size))
	}

	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = time.Now()
	}
	employee.IsActive = true

	if err := s.repo.Create(employee); err != nil {
		return nil, err
	}

	s.metrics.EmployeeOps.WithLabelValues("created").Inc()
	s.publish("employee.created", employee)
	return employee, nil
}

// UpdateEmployee applies a partial update. A new image file replaces
// the stored one (the old file is deleted from disk); otherwise an
// ExistingImage directive, if present, decides which reference to keep.
func (s *EmployeeService) UpdateEmployee(id uint, update EmployeeUpdate, image *multipart.FileHeader) (*models.Employee, error) {
	employee, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	switch {
	case image != nil:
		if employee.Image != "" {
			if err := s.uploads.Remove(employee.Image); err != nil {
				log.Printf("Warning: failed to remove old image for employee %d: %v", id, err)
			}
		}
		ref, err := s.uploads.Save(image)
		if err != nil {
			return nil, fmt.Errorf("failed to store employee image: %w", err)
		}
		employee.Image = ref
		s.metrics.UploadedBytes.Add(float64(image.Size))
	case update.ExistingImage != nil:
		employee.Image = *update.ExistingImage
	}

	if update.Name != nil {
		employee.Name = *update.Name
	}
	if update.Email != nil {
		employee.Email = *update.Email
	}
	if update.Mobile != nil {
		employee.Mobile = *update.Mobile
	}
	if update.Designation != nil {
		employee.Designation = *update.Designation
	}
	if update.Gender != nil {
		employee.Gender = *update.Gender
	}
	if update.Courses != nil {
		employee.Courses = *update.Courses
	}

	if err := s.repo.Update(employee); err != nil {
		return nil, err
	}

	s.metrics.EmployeeOps.WithLabelValues("updated").Inc()
	s.publish("employee.updated", employee)
	return employee, nil
}

// DeleteEmployee removes an employee and its image file, then returns
// the freshly recomputed record counts.
func (s *EmployeeService) DeleteEmployee(id uint) (Counts, error) {
	employee, err := s.repo.GetByID(id)
	if err != nil {
		return Counts{}, err
	}

	if employee.Image != "" {
		// Best effort: a missing file is fine, anything else is logged
		// but does not block the record deletion.
		if err := s.uploads.Remove(employee.Image); err != nil {
			log.Printf("Warning: failed to remove image for employee %d: %v", id, err)
		}
	}

	if err := s.repo.Delete(id); err != nil {
		return Counts{}, err
	}

	total, active, err := s.repo.Counts()
	if err != nil {
		return Counts{}, err
	}

	s.metrics.EmployeeOps.WithLabelValues("deleted").Inc()
	s.publish("employee.deleted", employee)
	return Counts{Total: total, Active: active}, nil
}

// SetEmployeeStatus sets the active flag to the supplied value (a set,
// not a flip) and returns the updated record plus fresh counts.
func (s *EmployeeService) SetEmployeeStatus(id uint, isActive bool) (*models.Employee, Counts, error) {
	employee, err := s.repo.GetByID(id)
	if err != nil {
		return nil, Counts{}, err
	}

	employee.IsActive = isActive
	if err := s.repo.Update(employee); err != nil {
		return nil, Counts{}, err
	}

	total, active, err := s.repo.Counts()
	if err != nil {
		return nil, Counts{}, err
	}

	s.metrics.EmployeeOps.WithLabelValues("status_changed").Inc()
	s.publish("employee.status", employee)
	return employee, Counts{Total: total, Active: active}, nil
}

// publish sends a lifecycle event when a broker is configured. Publish
// failures are logged, never surfaced to the caller.
func (s *EmployeeService) publish(event string, employee *models.Employee) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEmployeeEvent(event, employee); err != nil {
		log.Printf("Warning: failed to publish %s event for employee %d: %v", event, employee.ID, err)
	}
}
