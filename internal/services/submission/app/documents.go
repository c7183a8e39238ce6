package app

import (
	"context"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/docversion"
)

// PutDocument registers or updates a source document record. Used by the
// dev seeding path; production documents arrive through the repository
// adapter.
func (s *Service) PutDocument(ctx context.Context, doc document.Document) error {
	return s.store.PutDocument(ctx, doc)
}

// GetDocument loads a source document record.
func (s *Service) GetDocument(ctx context.Context, documentID string) (document.Document, error) {
	return s.store.GetDocument(ctx, documentID)
}

// CreateVersion appends an immutable version to a document's linear
// history and makes it current.
func (s *Service) CreateVersion(ctx context.Context, documentID string, snapshot docversion.Snapshot, authorID string) (docversion.DocumentVersion, error) {
	return s.store.CreateVersion(ctx, documentID, snapshot, authorID)
}

// GetVersion loads one immutable document version.
func (s *Service) GetVersion(ctx context.Context, versionID string) (docversion.DocumentVersion, error) {
	return s.store.GetVersion(ctx, versionID)
}

// ListVersions returns a document's versions in creation order.
func (s *Service) ListVersions(ctx context.Context, documentID string) ([]docversion.DocumentVersion, error) {
	return s.store.ListVersions(ctx, documentID)
}

// RestoreVersion copies an old snapshot forward as a new current version.
func (s *Service) RestoreVersion(ctx context.Context, documentID, targetVersionID, authorID string) (docversion.DocumentVersion, error) {
	return s.store.RestoreVersion(ctx, documentID, targetVersionID, authorID)
}

// DiffVersions computes the field-level difference from version a to
// version b.
func (s *Service) DiffVersions(ctx context.Context, versionA, versionB string) (docversion.Diff, error) {
	a, err := s.store.GetVersion(ctx, versionA)
	if err != nil {
		return docversion.Diff{}, err
	}
	b, err := s.store.GetVersion(ctx, versionB)
	if err != nil {
		return docversion.Diff{}, err
	}
	return docversion.Compare(a.Snapshot, b.Snapshot), nil
}
