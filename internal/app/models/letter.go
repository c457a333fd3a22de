package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LetterKind is the letter template family
type LetterKind string

const (
	LetterOffer      LetterKind = "offer"
	LetterCompletion LetterKind = "completion"
)

// ParseLetterKind accepts any casing of "offer" or "completion"
func ParseLetterKind(s string) (LetterKind, bool) {
	switch LetterKind(strings.ToLower(strings.TrimSpace(s))) {
	case LetterOffer:
		return LetterOffer, true
	case LetterCompletion:
		return LetterCompletion, true
	}
	return "", false
}

// BatchKind returns the kind recorded on batches of this letter family
func (k LetterKind) BatchKind() BatchKind {
	return BatchKind("letter-" + string(k))
}

// Letter defines the letter model based on the 'letters' table.
// Dates are stored as the text the operator supplied.
type Letter struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	RecipientName  string     `json:"recipientName" db:"recipient_name"`
	LetterType     LetterKind `json:"letterType" db:"letter_type"`
	CourseName     *string    `json:"courseName,omitempty" db:"course_name"`
	ProjectTitle   *string    `json:"projectTitle,omitempty" db:"project_title"`
	StartDate      *string    `json:"startDate,omitempty" db:"start_date"`
	EndDate        *string    `json:"endDate,omitempty" db:"end_date"`
	CompletionDate *string    `json:"completionDate,omitempty" db:"completion_date"`
	Position       *string    `json:"position,omitempty" db:"position"`
	Duration       *string    `json:"duration,omitempty" db:"duration"`
	InternID       *string    `json:"internId,omitempty" db:"intern_id"`
	Department     *string    `json:"department,omitempty" db:"department"`
	LetterDate     *string    `json:"letterDate,omitempty" db:"letter_date"`
	BatchID        *uuid.UUID `json:"batchId,omitempty" db:"batch_id"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}
