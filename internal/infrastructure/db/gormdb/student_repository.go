package gormdb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/student-registry/registry-api/internal/core/domain"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Create(ctx context.Context, s *domain.Student) (*domain.Student, error) {
	m := studentModel{
		RegistrationNumber: s.RegistrationNumber,
		FirstName:          s.FirstName,
		MiddleName:         s.MiddleName,
		LastName:           s.LastName,
		DateOfBirth:        s.DateOfBirth,
		Gender:             s.Gender,
		Nationality:        s.Nationality,
		PreviousSchool:     s.PreviousSchool,
		AdmissionNumber:    s.AdmissionNumber,
		PhotoURL:           s.PhotoURL,
		CreatedAt:          s.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrStudentExists
		}
		return nil, fmt.Errorf("insert student: %w", err)
	}
	return m.toDomain(), nil
}

// List returns all rows ordered by primary key, which is insertion order.
func (r *StudentRepository) List(ctx context.Context) ([]*domain.Student, error) {
	var rows []studentModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	out := make([]*domain.Student, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}
