package services_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"staffdir/internal/metrics"
	"staffdir/internal/models"
	"staffdir/internal/services"
	"staffdir/internal/uploads"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmployeeRepository is a mock implementation of repositories.EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) GetAll() ([]models.Employee, error) {
	args := m.Called()
	return args.Get(0).([]models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetByID(id uint) (*models.Employee, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetByEmail(email string) (*models.Employee, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Create(employee *models.Employee) error {
	args := m.Called(employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Update(employee *models.Employee) error {
	args := m.Called(employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Counts() (int64, int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEmployeeEvent(event string, payload interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

// imageFile builds a *multipart.FileHeader carrying the given content.
func imageFile(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("f_Image", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["f_Image"][0]
}

// newEmployeeService wires a service around a mock repo, a real upload
// store in a temp dir, and an optional publisher.
func newEmployeeService(t *testing.T, repo *MockEmployeeRepository, events services.EventPublisher) (*services.EmployeeService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := uploads.NewStore(dir)
	require.NoError(t, err)
	return services.NewEmployeeService(repo, store, events, metrics.NewMetrics(prometheus.NewRegistry())), dir
}

func notFoundErr(id uint) error {
	return fmt.Errorf("employee with ID %d: %w", id, models.ErrNotFound)
}

func strPtr(s string) *string { return &s }

func TestEmployeeService_CreateEmployee(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, _ := newEmployeeService(t, mockRepo, nil)

	employee := &models.Employee{Name: "Alice", Email: "a@x.com"}

	mockRepo.On("GetByEmail", "a@x.com").
		Return(nil, fmt.Errorf("employee with email a@x.com: %w", models.ErrNotFound)).Once()
	mockRepo.On("Create", employee).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Employee).ID = 1
	}).Return(nil).Once()

	created, err := service.CreateEmployee(employee, nil)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), created.ID)
	assert.True(t, created.IsActive, "new employees default to active")
	assert.False(t, created.CreatedAt.IsZero(), "creation timestamp defaults to now")
	assert.Empty(t, created.Image)
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_CreateEmployee_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, _ := newEmployeeService(t, mockRepo, nil)

	mockRepo.On("GetByEmail", "a@x.com").Return(&models.Employee{ID: 1, Email: "a@x.com"}, nil).Once()

	_, err := service.CreateEmployee(&models.Employee{Name: "Alice Again", Email: "a@x.com"}, nil)
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_CreateEmployee_WithImage(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, dir := newEmployeeService(t, mockRepo, nil)

	mockRepo.On("GetByEmail", "a@x.com").
		Return(nil, fmt.Errorf("employee with email a@x.com: %w", models.ErrNotFound)).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Employee")).Return(nil).Once()

	created, err := service.CreateEmployee(
		&models.Employee{Name: "Alice", Email: "a@x.com"},
		imageFile(t, "alice.png", "fake-png"),
	)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Image, uploads.URLPrefix+"/"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(created.Image, uploads.URLPrefix+"/")))
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_CreateEmployee_PublishesEvent(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	mockEvents := new(MockEventPublisher)
	service, _ := newEmployeeService(t, mockRepo, mockEvents)

	mockRepo.On("GetByEmail", "a@x.com").
		Return(nil, fmt.Errorf("employee with email a@x.com: %w", models.ErrNotFound)).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Employee")).Return(nil).Once()
	mockEvents.On("PublishEmployeeEvent", "employee.created", mock.AnythingOfType("*models.Employee")).Return(nil).Once()

	_, err := service.CreateEmployee(&models.Employee{Name: "Alice", Email: "a@x.com"}, nil)
	assert.NoError(t, err)
	mockEvents.AssertExpectations(t)

	// A publish failure is logged, never surfaced.
	mockRepo.On("GetByEmail", "b@x.com").
		Return(nil, fmt.Errorf("employee with email b@x.com: %w", models.ErrNotFound)).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Employee")).Return(nil).Once()
	mockEvents.On("PublishEmployeeEvent", "employee.created", mock.AnythingOfType("*models.Employee")).
		Return(fmt.Errorf("broker down")).Once()

	_, err = service.CreateEmployee(&models.Employee{Name: "Bob", Email: "b@x.com"}, nil)
	assert.NoError(t, err)
	mockEvents.AssertExpectations(t)
}

func TestEmployeeService_UpdateEmployee_ExistingImageHint(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, dir := newEmployeeService(t, mockRepo, nil)

	stored := &models.Employee{ID: 1, Name: "Alice", Email: "a@x.com", Image: "/uploads/old.png", IsActive: true}
	mockRepo.On("GetByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("Update", stored).Return(nil).Once()

	updated, err := service.UpdateEmployee(1, services.EmployeeUpdate{
		ExistingImage: strPtr("/uploads/x.png"),
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/x.png", updated.Image)

	// The hint is a pure directive: nothing touches disk.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_UpdateEmployee_NewImageReplacesOld(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, dir := newEmployeeService(t, mockRepo, nil)

	oldPath := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(oldPath, []byte("stale"), 0o600))

	stored := &models.Employee{ID: 1, Name: "Alice", Email: "a@x.com", Image: "/uploads/old.png", IsActive: true}
	mockRepo.On("GetByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("Update", stored).Return(nil).Once()

	updated, err := service.UpdateEmployee(1, services.EmployeeUpdate{}, imageFile(t, "new.png", "fresh"))
	assert.NoError(t, err)
	assert.NotEqual(t, "/uploads/old.png", updated.Image)

	_, statErr := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(statErr), "old image file should be deleted")

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(updated.Image, uploads.URLPrefix+"/")))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_UpdateEmployee_PartialFields(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, _ := newEmployeeService(t, mockRepo, nil)

	stored := &models.Employee{
		ID: 1, Name: "Alice", Email: "a@x.com", Mobile: "12345",
		Designation: "HR", Gender: "F", Courses: []string{"MCA"},
		Image: "/uploads/a.png", IsActive: true,
	}
	mockRepo.On("GetByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("Update", stored).Return(nil).Once()

	updated, err := service.UpdateEmployee(1, services.EmployeeUpdate{
		Designation: strPtr("Manager"),
		Courses:     &[]string{"MCA", "BCA"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "Manager", updated.Designation)
	assert.Equal(t, []string{"MCA", "BCA"}, updated.Courses)

	// Everything not supplied stays as stored.
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.Equal(t, "12345", updated.Mobile)
	assert.Equal(t, "F", updated.Gender)
	assert.Equal(t, "/uploads/a.png", updated.Image)
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_UpdateEmployee_NotFound(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, _ := newEmployeeService(t, mockRepo, nil)

	mockRepo.On("GetByID", uint(99)).Return(nil, notFoundErr(99)).Once()

	_, err := service.UpdateEmployee(99, services.EmployeeUpdate{Name: strPtr("Nobody")}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestEmployeeService_DeleteEmployee(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, dir := newEmployeeService(t, mockRepo, nil)

	imagePath := filepath.Join(dir, "alice.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("png"), 0o600))

	stored := &models.Employee{ID: 1, Name: "Alice", Email: "a@x.com", Image: "/uploads/alice.png", IsActive: true}
	mockRepo.On("GetByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("Delete", uint(1)).Return(nil).Once()
	mockRepo.On("Counts").Return(int64(1), int64(0), nil).Once()

	counts, err := service.DeleteEmployee(1)
	assert.NoError(t, err)
	assert.Equal(t, services.Counts{Total: 1, Active: 0}, counts)

	_, statErr := os.Stat(imagePath)
	assert.True(t, os.IsNotExist(statErr), "image file should be deleted with the record")
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_DeleteEmployee_NoImage(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, _ := newEmployeeService(t, mockRepo, nil)

	stored := &models.Employee{ID: 2, Name: "Bob", Email: "b@x.com", IsActive: true}
	mockRepo.On("GetByID", uint(2)).Return(stored, nil).Once()
	mockRepo.On("Delete", uint(2)).Return(nil).Once()
	mockRepo.On("Counts").Return(int64(0), int64(0), nil).Once()

	counts, err := service.DeleteEmployee(2)
	assert.NoError(t, err)
	assert.Equal(t, services.Counts{Total: 0, Active: 0}, counts)
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_DeleteEmployee_NotFound(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, _ := newEmployeeService(t, mockRepo, nil)

	mockRepo.On("GetByID", uint(99)).Return(nil, notFoundErr(99)).Once()

	_, err := service.DeleteEmployee(99)
	assert.ErrorIs(t, err, models.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestEmployeeService_SetEmployeeStatus(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	service, _ := newEmployeeService(t, mockRepo, nil)

	stored := &models.Employee{ID: 1, Name: "Alice", Email: "a@x.com", IsActive: true}
	mockRepo.On("GetByID", uint(1)).Return(stored, nil).Twice()
	mockRepo.On("Update", stored).Return(nil).Twice()
	mockRepo.On("Counts").Return(int64(2), int64(1), nil).Once()

	employee, counts, err := service.SetEmployeeStatus(1, false)
	assert.NoError(t, err)
	assert.False(t, employee.IsActive)
	assert.Equal(t, services.Counts{Total: 2, Active: 1}, counts)

	// It is a set, not a flip: setting back restores the flag.
	mockRepo.On("Counts").Return(int64(2), int64(2), nil).Once()
	employee, counts, err = service.SetEmployeeStatus(1, true)
	assert.NoError(t, err)
	assert.True(t, employee.IsActive)
	assert.Equal(t, services.Counts{Total: 2, Active: 2}, counts)
	mockRepo.AssertExpectations(t)
}
