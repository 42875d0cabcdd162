package gormdb

import (
	"strconv"
	"time"

	"github.com/student-registry/registry-api/internal/core/domain"
)

type userModel struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;not null;uniqueIndex"`
	Email        string `gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "authorized_users" }

type studentModel struct {
	ID                 uint   `gorm:"primaryKey"`
	RegistrationNumber string `gorm:"size:64;not null;uniqueIndex"`
	FirstName          string `gorm:"size:100"`
	MiddleName         string `gorm:"size:100"`
	LastName           string `gorm:"size:100"`
	DateOfBirth        string `gorm:"size:32"`
	Gender             string `gorm:"size:20"`
	Nationality        string `gorm:"size:64"`
	PreviousSchool     string `gorm:"size:200"`
	AdmissionNumber    string `gorm:"size:64"`
	PhotoURL           string `gorm:"size:512"`
	CreatedAt          time.Time
}

func (studentModel) TableName() string { return "students" }

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           formatID(m.ID),
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func (m *studentModel) toDomain() *domain.Student {
	return &domain.Student{
		ID:                 formatID(m.ID),
		RegistrationNumber: m.RegistrationNumber,
		FirstName:          m.FirstName,
		MiddleName:         m.MiddleName,
		LastName:           m.LastName,
		DateOfBirth:        m.DateOfBirth,
		Gender:             m.Gender,
		Nationality:        m.Nationality,
		PreviousSchool:     m.PreviousSchool,
		AdmissionNumber:    m.AdmissionNumber,
		PhotoURL:           m.PhotoURL,
		CreatedAt:          m.CreatedAt.UTC(),
	}
}
