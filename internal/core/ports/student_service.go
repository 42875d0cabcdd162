package ports

import (
	"context"
	"io"
)

// RegisterStudentInput carries the multipart form of a student registration.
type RegisterStudentInput struct {
	RegistrationNumber string
	FirstName          string
	MiddleName         string
	LastName           string
	DateOfBirth        string
	Gender             string
	Nationality        string
	PreviousSchool     string
	AdmissionNumber    string

	// PhotoFilename is the client-supplied name; only its extension matters.
	PhotoFilename string
	Photo         io.Reader
}

// StudentSummary is the flat view returned by the listing.
type StudentSummary struct {
	ID                 string
	RegistrationNumber string
	FirstName          string
	MiddleName         string
	LastName           string
	AdmissionNumber    string
	PhotoURL           string
}

type StudentService interface {
	RegisterStudent(ctx context.Context, input RegisterStudentInput) (*StudentSummary, error)
	ListStudents(ctx context.Context) ([]StudentSummary, error)
}
