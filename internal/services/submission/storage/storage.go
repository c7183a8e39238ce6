// Package storage defines the persistence contracts for the submission
// engine: the read-only document view, the immutable version store, the
// optimistically-versioned submission aggregate, and the append-only
// history ledger.
package storage

import (
	"context"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/docversion"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/history"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/submission"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrStateConflict indicates an update carried a stale aggregate
// revision. The caller must re-read and retry; two concurrent build
// attempts on one submission can never interleave states.
var ErrStateConflict = apperrors.New(apperrors.CodeStateConflict, "submission was modified concurrently")

// ErrVersionConflict indicates two writers raced on a document's version
// counter; exactly one wins and the loser retries from a fresh read.
var ErrVersionConflict = apperrors.New(apperrors.CodeVersionConflict, "document version was created concurrently")

// DocumentStore is the narrow read contract the engine consumes from the
// document repository, plus the write used by seeding and tests.
type DocumentStore interface {
	PutDocument(ctx context.Context, doc document.Document) error
	GetDocument(ctx context.Context, id string) (document.Document, error)
	CurrentVersionID(ctx context.Context, documentID string) (string, error)
}

// VersionStore records immutable document versions with strictly
// increasing, gapless numbering per document.
type VersionStore interface {
	CreateVersion(ctx context.Context, documentID string, snapshot docversion.Snapshot, authorID string) (docversion.DocumentVersion, error)
	GetVersion(ctx context.Context, versionID string) (docversion.DocumentVersion, error)
	ListVersions(ctx context.Context, documentID string) ([]docversion.DocumentVersion, error)
	// RestoreVersion copies an old snapshot forward as a new version whose
	// parent is the previous current version; history is never rewritten.
	RestoreVersion(ctx context.Context, documentID, targetVersionID, authorID string) (docversion.DocumentVersion, error)
}

// SubmissionStore persists the submission aggregate. UpdateSubmission
// applies only when expectedRevision matches the stored revision and
// bumps it; stale writes fail with ErrStateConflict.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error)
	GetSubmission(ctx context.Context, id string) (submission.Submission, error)
	UpdateSubmission(ctx context.Context, sub submission.Submission, expectedRevision uint64) (submission.Submission, error)
	ListSubmissionsByState(ctx context.Context, state submission.State) ([]submission.Submission, error)
}

// HistoryStore is the append-only audit ledger. There are deliberately no
// update or delete operations in this contract.
type HistoryStore interface {
	AppendHistory(ctx context.Context, entry history.Entry) (history.Entry, error)
	ListHistory(ctx context.Context, submissionID string) ([]history.Entry, error)
}

// Store combines every persistence contract the engine needs.
type Store interface {
	DocumentStore
	VersionStore
	SubmissionStore
	HistoryStore
}
