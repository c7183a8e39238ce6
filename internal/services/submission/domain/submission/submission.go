// Package submission defines the package-assembly aggregate and its
// lifecycle state machine.
package submission

import (
	"strings"
	"time"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/manifest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/validation"
)

var (
	// ErrEmptyRegion indicates a submission created without a region.
	ErrEmptyRegion = apperrors.New(apperrors.CodeSubmissionEmptyRegion, "submission region is required")
	// ErrInvalidTransition indicates a disallowed lifecycle move.
	ErrInvalidTransition = apperrors.New(apperrors.CodeSubmissionInvalidTransition, "submission state transition is not allowed")
	// ErrBlocked indicates an attempt to advance past blocking issues.
	ErrBlocked = apperrors.New(apperrors.CodeSubmissionBlocked, "submission has blocking validation issues")
	// ErrNotValidated indicates a build attempt without a clear validation.
	ErrNotValidated = apperrors.New(apperrors.CodeSubmissionNotValidated, "submission has not been validated clear")
	// ErrNotAbandonable indicates abandonment past the point of no return.
	ErrNotAbandonable = apperrors.New(apperrors.CodeSubmissionNotAbandonable, "submission can no longer be abandoned")
	// ErrNotFound indicates a requested submission does not exist.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "submission not found")
)

// Submission is the aggregate root tracking one package through manifest
// build, validation, enrichment, assembly, transmission, and
// acknowledgment. Revision backs the optimistic-concurrency check that
// keeps per-submission transitions strictly sequential.
type Submission struct {
	ID     string
	Region string
	State  State
	// Revision is bumped by the store on every persisted transition; a
	// stale expected revision fails with a state conflict.
	Revision uint64

	Manifest   *manifest.Manifest
	Validation *validation.Result

	// ResumeState records where a failed pipeline re-enters on retry, so
	// a signing outage does not force re-validation.
	ResumeState   State
	FailureDetail string

	ArtifactDigest string
	TrackingID     string
	// AckPending distinguishes "we don't know yet" from "it failed" after
	// transmission; an acknowledgment timeout never fails the submission.
	AckPending bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a draft submission for a region.
func New(id, region string, now time.Time) (Submission, error) {
	if strings.TrimSpace(region) == "" {
		return Submission{}, ErrEmptyRegion
	}
	return Submission{
		ID:        id,
		Region:    strings.ToUpper(strings.TrimSpace(region)),
		State:     StateDraft,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Terminal reports whether the submission reached an end state.
func (s Submission) Terminal() bool {
	return s.State == StateAcknowledged || s.State == StateAbandoned
}

// Abandonable reports whether the submission may still be abandoned.
// Once transmission starts, only compensating actions remain.
func (s Submission) Abandonable() bool {
	return s.State == StateDraft || s.State == StateManifestBuilt
}
