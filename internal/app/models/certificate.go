package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultCertificatePrefix is the organisation prefix of every certificate ID
const DefaultCertificatePrefix = "TR"

// Certificate defines the certificate model based on the 'certificates' table
type Certificate struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	CertificateID string     `json:"certificateId" db:"certificate_id"` // e.g. TR-2025/FSW/00007
	RecipientName string     `json:"recipientName" db:"recipient_name"`
	DOB           *time.Time `json:"dob,omitempty" db:"dob"`
	Course        string     `json:"course" db:"course"`
	CourseCode    string     `json:"courseCode" db:"course_code"`
	Department    *string    `json:"department,omitempty" db:"department"`
	College       *string    `json:"college,omitempty" db:"college"`
	Content       *string    `json:"content,omitempty" db:"content"`
	Duration      *string    `json:"duration,omitempty" db:"duration"`
	BatchID       *uuid.UUID `json:"batchId,omitempty" db:"batch_id"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// FormatCertificateID builds {prefix}-{year}/{courseCode}/{sequence:05d}
func FormatCertificateID(prefix string, year int, courseCode string, sequence int) string {
	if prefix == "" {
		prefix = DefaultCertificatePrefix
	}
	return fmt.Sprintf("%s-%d/%s/%05d", prefix, year, courseCode, sequence)
}

// CertificateIDParts is a parsed certificate ID
type CertificateIDParts struct {
	Prefix     string
	Year       int
	CourseCode string
	Sequence   int
}

var certificateIDPattern = regexp.MustCompile(`^([A-Za-z0-9]+)-(\d{4})/([^/\s]+)/(\d{5,})$`)

// ParseCertificateID splits an ID produced by FormatCertificateID
func ParseCertificateID(id string) (CertificateIDParts, error) {
	m := certificateIDPattern.FindStringSubmatch(id)
	if m == nil {
		return CertificateIDParts{}, fmt.Errorf("malformed certificate ID %q", id)
	}
	year, _ := strconv.Atoi(m[2])
	seq, err := strconv.Atoi(m[4])
	if err != nil {
		return CertificateIDParts{}, fmt.Errorf("malformed certificate sequence in %q: %w", id, err)
	}
	return CertificateIDParts{Prefix: m[1], Year: year, CourseCode: m[3], Sequence: seq}, nil
}

var courseCodePattern = regexp.MustCompile(`^[^/\s]+$`)

// ValidCourseCode reports whether code can be embedded in a certificate ID
func ValidCourseCode(code string) bool {
	return courseCodePattern.MatchString(code)
}
