package models

import "time"

// SequenceCounter is one row of 'certificate_sequences'
type SequenceCounter struct {
	Year         int       `json:"year" db:"year"`
	CourseCode   string    `json:"courseCode" db:"course_code"`
	LastSequence int       `json:"lastSequence" db:"last_sequence"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
