package dto

import (
	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/app/models"
)

// CreateLetterRequest is the body of POST /letters
type CreateLetterRequest struct {
	RecipientName  string     `json:"recipientName" binding:"required,max=200"`
	LetterType     string     `json:"letterType" binding:"required,oneofci=offer completion"`
	CourseName     string     `json:"courseName" binding:"required,max=200"`
	StartDate      string     `json:"startDate" binding:"required,max=50"`
	EndDate        string     `json:"endDate" binding:"required,max=50"`
	ProjectTitle   string     `json:"projectTitle" binding:"omitempty,max=300"`
	CompletionDate string     `json:"completionDate" binding:"omitempty,max=50"`
	Position       string     `json:"position" binding:"omitempty,max=200"`
	Duration       string     `json:"duration" binding:"omitempty,max=100"`
	InternID       string     `json:"internId" binding:"omitempty,max=64"`
	Department     string     `json:"department" binding:"omitempty,max=200"`
	LetterDate     string     `json:"letterDate" binding:"omitempty,max=50"`
	BatchID        *uuid.UUID `json:"batchId"`
}

// BulkLetterResponse is returned by POST /letters/bulk
type BulkLetterResponse struct {
	Batch   *models.Batch   `json:"batch"`
	Letters []models.Letter `json:"letters"`
	Count   int             `json:"count"`
	Skipped int             `json:"skipped"`
}
