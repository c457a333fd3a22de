package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator allowed to log in
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// DownloadKind is what a document_downloads row counts
type DownloadKind string

const (
	DownloadCertificate DownloadKind = "certificate"
	DownloadLetter      DownloadKind = "letter"
	DownloadArchive     DownloadKind = "archive"
	DownloadExport      DownloadKind = "export"
)

// Stats aggregates document totals
type Stats struct {
	TotalCertificates int64 `json:"totalCertificates"`
	TotalLetters      int64 `json:"totalLetters"`
	TotalBatches      int64 `json:"totalBatches"`
	TotalDownloads    int64 `json:"totalDownloads"`
}
