package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"staffdir/internal/models"
	"staffdir/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// EmployeeHandler handles HTTP requests for employee records.
type EmployeeHandler struct {
	service  *services.EmployeeService
	validate *validator.Validate
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(service *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the employee routes with the Fiber app.
func (h *EmployeeHandler) RegisterRoutes(router fiber.Router) {
	employeeRoutes := router.Group("/employees")
	employeeRoutes.Get("/", h.HandleGetEmployees)
	employeeRoutes.Get("/:id", h.HandleGetEmployeeByID)
	employeeRoutes.Post("/", h.HandleCreateEmployee)
	employeeRoutes.Put("/:id", h.HandleUpdateEmployee)
	employeeRoutes.Delete("/:id", h.HandleDeleteEmployee)
	employeeRoutes.Patch("/:id/toggle-status", h.HandleToggleStatus)
}

// HandleGetEmployees retrieves all employees.
func (h *EmployeeHandler) HandleGetEmployees(c *fiber.Ctx) error {
	employees, err := h.service.GetAllEmployees()
	if err != nil {
		log.Printf("Error getting all employees: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve employees",
		})
	}
	return c.JSON(employees)
}

// HandleGetEmployeeByID retrieves a single employee by its ID.
func (h *EmployeeHandler) HandleGetEmployeeByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid employee ID",
		})
	}

	employee, err := h.service.GetEmployeeByID(uint(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Employee not found",
			})
		}
		log.Printf("Error getting employee %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve employee",
		})
	}
	return c.JSON(employee)
}

// HandleCreateEmployee creates a new employee from a multipart form,
// with an optional image in the "f_Image" file field.
func (h *EmployeeHandler) HandleCreateEmployee(c *fiber.Ctx) error {
	employee := models.Employee{
		Name:        c.FormValue("f_Name"),
		Email:       c.FormValue("f_Email"),
		Mobile:      c.FormValue("f_Mobile"),
		Designation: c.FormValue("f_Designation"),
		Gender:      c.FormValue("f_Gender"),
		Courses:     parseCourses(formValues(c, "f_Course")),
	}

	if err := h.validate.Struct(employee); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	created, err := h.service.CreateEmployee(&employee, formFile(c, "f_Image"))
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Email already registered",
			})
		}
		log.Printf("Error creating employee: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create employee",
		})
	}
	return c.JSON(created)
}

// HandleUpdateEmployee applies a partial update from a multipart form.
// Fields absent from the form are left unchanged; the transient
// "existingImage" form value preserves an image without re-uploading.
func (h *EmployeeHandler) HandleUpdateEmployee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid employee ID",
		})
	}

	var update services.EmployeeUpdate
	if form, err := c.MultipartForm(); err == nil && form != nil {
		update.Name = formPtr(form, "f_Name")
		update.Email = formPtr(form, "f_Email")
		update.Mobile = formPtr(form, "f_Mobile")
		update.Designation = formPtr(form, "f_Designation")
		update.Gender = formPtr(form, "f_Gender")
		update.ExistingImage = formPtr(form, "existingImage")
		if values, ok := form.Value["f_Course"]; ok {
			courses := parseCourses(values)
			update.Courses = &courses
		}
	}

	updated, err := h.service.UpdateEmployee(uint(id), update, formFile(c, "f_Image"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Employee not found",
			})
		}
		if errors.Is(err, models.ErrDuplicateEmail) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Email already registered",
			})
		}
		log.Printf("Error updating employee %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update employee",
		})
	}
	return c.JSON(updated)
}

// HandleDeleteEmployee removes an employee and its image file, then
// returns the fresh total/active counts.
func (h *EmployeeHandler) HandleDeleteEmployee(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid employee ID",
		})
	}

	counts, err := h.service.DeleteEmployee(uint(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Employee not found",
			})
		}
		log.Printf("Error deleting employee %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete employee",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Employee removed successfully",
		"counts":  counts,
	})
}

// HandleToggleStatus sets the active flag to the value supplied in the
// request body and returns the updated record plus fresh counts.
func (h *EmployeeHandler) HandleToggleStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid employee ID",
		})
	}

	var body struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.BodyParser(&body); err != nil || body.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "isActive is required",
		})
	}

	employee, counts, err := h.service.SetEmployeeStatus(uint(id), *body.IsActive)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Employee not found",
			})
		}
		log.Printf("Error updating status for employee %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update employee status",
		})
	}
	return c.JSON(fiber.Map{
		"employee": employee,
		"counts":   counts,
	})
}

// formFile returns the uploaded file for a field, or nil when the
// request carries none.
func formFile(c *fiber.Ctx, key string) *multipart.FileHeader {
	file, err := c.FormFile(key)
	if err != nil {
		return nil
	}
	return file
}

// formValues returns all values posted for a multipart field.
func formValues(c *fiber.Ctx, key string) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.Value[key]
}

// formPtr returns a pointer to the first posted value for a field, or
// nil when the field was not part of the form. The distinction drives
// partial updates.
func formPtr(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// parseCourses flattens repeated or comma-separated course values into
// a clean slice.
func parseCourses(values []string) []string {
	var courses []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				courses = append(courses, part)
			}
		}
	}
	return courses
}
