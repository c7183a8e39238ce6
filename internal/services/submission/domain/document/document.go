package document

import (
	"strings"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
)

// Status describes the authoring lifecycle of a document.
type Status string

const (
	// StatusUnspecified represents an invalid document status value.
	StatusUnspecified Status = ""
	// StatusDraft indicates the document is being authored.
	StatusDraft Status = "draft"
	// StatusInReview indicates the document is under review.
	StatusInReview Status = "in_review"
	// StatusApproved indicates the document is approved for submission.
	StatusApproved Status = "approved"
)

// ErrNotFound indicates a requested document does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeDocumentNotFound, "document not found")

// Document is the read-only view of an authored regulatory document.
// The engine references documents but never mutates them; editing
// workflows own the write side.
type Document struct {
	ID               string
	SectionTag       string
	OwnerID          string
	Status           Status
	ContentHash      string
	CurrentVersionID string
}

// ParseStatus canonicalizes a status label.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "draft":
		return StatusDraft, true
	case "in_review":
		return StatusInReview, true
	case "approved":
		return StatusApproved, true
	default:
		return StatusUnspecified, false
	}
}

// Approved reports whether the document cleared review.
func (d Document) Approved() bool {
	return d.Status == StatusApproved
}
