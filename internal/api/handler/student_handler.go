package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/student-registry/registry-api/internal/api/metrics"
	"github.com/student-registry/registry-api/internal/core/domain"
	"github.com/student-registry/registry-api/internal/core/ports"
)

const photoField = "student-photo"

// StudentHandler handles student registration and listing.
type StudentHandler struct {
	service ports.StudentService
}

func NewStudentHandler(service ports.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Register handles POST /api/register-student.
//
// @Summary      Register a student with a photo
// @Tags         students
// @Accept       multipart/form-data
// @Produce      json
// @Param        registration_number  formData  string  true   "Registration number"
// @Param        firstname            formData  string  false  "First name"
// @Param        middlename           formData  string  false  "Middle name"
// @Param        lastname             formData  string  false  "Last name"
// @Param        date-picker          formData  string  false  "Date of birth"
// @Param        gender               formData  string  false  "Gender"
// @Param        nationality          formData  string  false  "Nationality"
// @Param        previous-school      formData  string  false  "Previous school"
// @Param        admission-number     formData  string  false  "Admission number"
// @Param        student-photo        formData  file    true   "png, jpg, jpeg or webp"
// @Success      201                  {object}  registerStudentResponse
// @Failure      400                  {object}  errorResponse
// @Failure      409                  {object}  errorResponse
// @Failure      413                  {object}  errorResponse
// @Router       /api/register-student [post]
func (h *StudentHandler) Register(c echo.Context) error {
	input := ports.RegisterStudentInput{
		RegistrationNumber: c.FormValue("registration_number"),
		FirstName:          c.FormValue("firstname"),
		MiddleName:         c.FormValue("middlename"),
		LastName:           c.FormValue("lastname"),
		DateOfBirth:        c.FormValue("date-picker"),
		Gender:             c.FormValue("gender"),
		Nationality:        c.FormValue("nationality"),
		PreviousSchool:     c.FormValue("previous-school"),
		AdmissionNumber:    c.FormValue("admission-number"),
	}

	fh, err := c.FormFile(photoField)
	switch {
	case err == nil:
		var file multipart.File
		file, err = fh.Open()
		if err != nil {
			return fmt.Errorf("open uploaded photo: %w", err)
		}
		defer file.Close()
		input.Photo = file
		input.PhotoFilename = fh.Filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// Left empty; the service reports it as invalid input.
	default:
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return err
		}
		return fmt.Errorf("%w: malformed multipart form", domain.ErrInvalidInput)
	}

	summary, err := h.service.RegisterStudent(c.Request().Context(), input)
	metrics.StudentsRegisteredTotal.WithLabelValues(registrationResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerStudentResponse{
		Message: "Student registered successfully",
		Student: toStudentResponse(*summary),
	})
}

// List handles GET /api/students.
//
// @Summary      List students
// @Tags         students
// @Produce      json
// @Success      200  {array}   studentResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/students [get]
func (h *StudentHandler) List(c echo.Context) error {
	students, err := h.service.ListStudents(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]studentResponse, len(students))
	for i, s := range students {
		out[i] = toStudentResponse(s)
	}
	return c.JSON(http.StatusOK, out)
}

func toStudentResponse(s ports.StudentSummary) studentResponse {
	return studentResponse{
		ID:                 s.ID,
		RegistrationNumber: s.RegistrationNumber,
		FirstName:          s.FirstName,
		MiddleName:         s.MiddleName,
		LastName:           s.LastName,
		AdmissionNumber:    s.AdmissionNumber,
		Photo:              s.PhotoURL,
	}
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrStudentExists):
		return "conflict"
	default:
		return "error"
	}
}
