package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchKind records which document family a batch produced
type BatchKind string

const (
	BatchCertificate      BatchKind = "certificate"
	BatchLetterOffer      BatchKind = "letter-offer"
	BatchLetterCompletion BatchKind = "letter-completion"
)

// IsLetter reports whether the batch holds letters
func (k BatchKind) IsLetter() bool {
	return k == BatchLetterOffer || k == BatchLetterCompletion
}

// Batch defines one bulk upload, based on the 'batches' table
type Batch struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"` // source file name without extension
	Kind           BatchKind `json:"kind" db:"kind"`
	SourceFileName string    `json:"sourceFileName" db:"source_file_name"`
	SourcePath     *string   `json:"-" db:"source_path"`
	TotalDocuments int       `json:"totalDocuments" db:"total_documents"` // data rows in the upload, valid or not
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
