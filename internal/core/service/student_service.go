package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/student-registry/registry-api/internal/core/domain"
	"github.com/student-registry/registry-api/internal/core/ports"
)

var allowedPhotoExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
}

type StudentService struct {
	repo   ports.StudentRepository
	photos ports.PhotoHost
	logger zerolog.Logger
}

func NewStudentService(repo ports.StudentRepository, photos ports.PhotoHost, logger zerolog.Logger) *StudentService {
	return &StudentService{repo: repo, photos: photos, logger: logger}
}

// RegisterStudent uploads the photo under the sanitized registration number
// and then persists the record. The two steps are not transactional: if the
// insert fails the uploaded photo stays on the host.
func (s *StudentService) RegisterStudent(ctx context.Context, input ports.RegisterStudentInput) (*ports.StudentSummary, error) {
	regNo := strings.TrimSpace(input.RegistrationNumber)
	if regNo == "" {
		return nil, fmt.Errorf("%w: missing registration number", domain.ErrInvalidInput)
	}
	if input.Photo == nil || !AllowedPhoto(input.PhotoFilename) {
		return nil, fmt.Errorf("%w: invalid or missing file", domain.ErrInvalidInput)
	}

	key := domain.PhotoKey(regNo)
	url, err := s.photos.UploadImage(ctx, key, input.Photo)
	if err != nil {
		return nil, fmt.Errorf("upload photo %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Str("url", url).Msg("photo uploaded")

	student, err := s.repo.Create(ctx, &domain.Student{
		RegistrationNumber: regNo,
		FirstName:          input.FirstName,
		MiddleName:         input.MiddleName,
		LastName:           input.LastName,
		DateOfBirth:        input.DateOfBirth,
		Gender:             input.Gender,
		Nationality:        input.Nationality,
		PreviousSchool:     input.PreviousSchool,
		AdmissionNumber:    input.AdmissionNumber,
		PhotoURL:           url,
		CreatedAt:          time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("registration_number", regNo).Str("photo_url", url).Msg("failed to persist student after photo upload")
		return nil, err
	}

	s.logger.Info().Str("student_id", student.ID).Str("registration_number", student.RegistrationNumber).Msg("student registered")
	summary := toSummary(student)
	return &summary, nil
}

func (s *StudentService) ListStudents(ctx context.Context) ([]ports.StudentSummary, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ports.StudentSummary, len(students))
	for i, st := range students {
		out[i] = toSummary(st)
	}
	return out, nil
}

// AllowedPhoto reports whether filename carries one of the accepted image
// extensions (case-insensitive).
func AllowedPhoto(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	_, ok := allowedPhotoExtensions[ext]
	return ok
}

func toSummary(s *domain.Student) ports.StudentSummary {
	return ports.StudentSummary{
		ID:                 s.ID,
		RegistrationNumber: s.RegistrationNumber,
		FirstName:          s.FirstName,
		MiddleName:         s.MiddleName,
		LastName:           s.LastName,
		AdmissionNumber:    s.AdmissionNumber,
		PhotoURL:           s.PhotoURL,
	}
}
