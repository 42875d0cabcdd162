package domain

import (
	"strings"
	"time"
)

// PhotoFolder is the namespace every student photo key lives under.
const PhotoFolder = "students"

// Student is a registered student record. PhotoURL points into the photo
// host and is set once, at creation.
type Student struct {
	ID                 string
	RegistrationNumber string
	FirstName          string
	MiddleName         string
	LastName           string
	DateOfBirth        string
	Gender             string
	Nationality        string
	PreviousSchool     string
	AdmissionNumber    string
	PhotoURL           string
	CreatedAt          time.Time
}

var pathSeparators = strings.NewReplacer("/", "_", `\`, "_")

// SanitizeRegistrationNumber replaces path separators so the registration
// number can be used as a single storage key segment. A result made only
// of dots ("." or "..") has its dots replaced as well. Identical inputs
// always map to identical keys.
func SanitizeRegistrationNumber(regNo string) string {
	s := pathSeparators.Replace(regNo)
	if strings.Trim(s, ".") == "" {
		return strings.Repeat("_", len(s))
	}
	return s
}

// PhotoKey returns the photo host key for a registration number,
// e.g. "2023/001" -> "students/2023_001".
func PhotoKey(regNo string) string {
	return PhotoFolder + "/" + SanitizeRegistrationNumber(regNo)
}
