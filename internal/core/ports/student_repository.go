package ports

import (
	"context"

	"github.com/student-registry/registry-api/internal/core/domain"
)

// StudentRepository defines persistence for student records.
type StudentRepository interface {
	// Create inserts a student. A duplicate registration number yields
	// domain.ErrStudentExists.
	Create(ctx context.Context, s *domain.Student) (*domain.Student, error)
	// List returns every student in storage order.
	List(ctx context.Context) ([]*domain.Student, error)
}
