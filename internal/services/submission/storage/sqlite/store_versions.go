package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/id"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/docversion"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/storage"
	msqlite "modernc.org/sqlite"
)

// CreateVersion appends a new immutable version for a document. The
// version number is assigned inside a transaction against a
// UNIQUE(document_id, version_number) constraint, so two concurrent
// writers can never mint the same number; the loser gets
// ErrVersionConflict and retries from a fresh read.
func (s *Store) CreateVersion(ctx context.Context, documentID string, snapshot docversion.Snapshot, authorID string) (docversion.DocumentVersion, error) {
	if strings.TrimSpace(documentID) == "" {
		return docversion.DocumentVersion{}, docversion.ErrEmptyDocumentID
	}
	if len(snapshot) == 0 {
		return docversion.DocumentVersion{}, docversion.ErrEmptySnapshot
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("begin create version: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := createVersionTx(ctx, tx, documentID, snapshot, authorID, time.Now())
	if err != nil {
		return docversion.DocumentVersion{}, err
	}
	if err := tx.Commit(); err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("commit create version: %w", err)
	}
	return version, nil
}

// createVersionTx holds the shared append path used by CreateVersion and
// RestoreVersion.
func createVersionTx(ctx context.Context, tx *sql.Tx, documentID string, snapshot docversion.Snapshot, authorID string, now time.Time) (docversion.DocumentVersion, error) {
	var currentVersionID string
	err := tx.QueryRowContext(ctx,
		`SELECT current_version_id FROM documents WHERE id = ?`, documentID,
	).Scan(&currentVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return docversion.DocumentVersion{}, document.ErrNotFound
		}
		return docversion.DocumentVersion{}, fmt.Errorf("load document: %w", err)
	}

	var maxNumber uint64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version_number), 0) FROM document_versions WHERE document_id = ?`, documentID,
	).Scan(&maxNumber)
	if err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("next version number: %w", err)
	}

	versionID, err := id.NewID()
	if err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("new version id: %w", err)
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("encode snapshot: %w", err)
	}

	version := docversion.DocumentVersion{
		ID:              versionID,
		DocumentID:      documentID,
		VersionNumber:   maxNumber + 1,
		AuthorID:        authorID,
		CreatedAt:       now.UTC().Truncate(time.Millisecond),
		Snapshot:        snapshot.Clone(),
		SnapshotHash:    snapshot.Hash(),
		ParentVersionID: currentVersionID,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO document_versions
		   (id, document_id, version_number, author_id, created_at, snapshot_json, snapshot_hash, parent_version_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		version.ID, version.DocumentID, version.VersionNumber, version.AuthorID,
		toMillis(version.CreatedAt), string(snapshotJSON), version.SnapshotHash, version.ParentVersionID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return docversion.DocumentVersion{}, storage.ErrVersionConflict
		}
		return docversion.DocumentVersion{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET current_version_id = ?, content_hash = ? WHERE id = ?`,
		version.ID, version.SnapshotHash, documentID,
	)
	if err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("advance current version: %w", err)
	}

	return version, nil
}

// GetVersion loads one immutable version by id.
func (s *Store) GetVersion(ctx context.Context, versionID string) (docversion.DocumentVersion, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, document_id, version_number, author_id, created_at, snapshot_json, snapshot_hash, parent_version_id
		 FROM document_versions WHERE id = ?`, versionID)
	return scanVersion(row)
}

// ListVersions returns a document's full history in version order.
func (s *Store) ListVersions(ctx context.Context, documentID string) ([]docversion.DocumentVersion, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, document_id, version_number, author_id, created_at, snapshot_json, snapshot_hash, parent_version_id
		 FROM document_versions WHERE document_id = ? ORDER BY version_number`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []docversion.DocumentVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// RestoreVersion copies the target snapshot forward as a new version.
// The restored version's parent is the previous current version, so a
// restore is recorded as a forward-moving event, never a history rewrite.
func (s *Store) RestoreVersion(ctx context.Context, documentID, targetVersionID, authorID string) (docversion.DocumentVersion, error) {
	target, err := s.GetVersion(ctx, targetVersionID)
	if err != nil {
		return docversion.DocumentVersion{}, err
	}
	if target.DocumentID != documentID {
		return docversion.DocumentVersion{}, docversion.ErrNotFound
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := createVersionTx(ctx, tx, documentID, target.Snapshot, authorID, time.Now())
	if err != nil {
		return docversion.DocumentVersion{}, err
	}
	if err := tx.Commit(); err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("commit restore: %w", err)
	}
	return version, nil
}

func scanVersion(row rowScanner) (docversion.DocumentVersion, error) {
	var version docversion.DocumentVersion
	var createdAt int64
	var snapshotJSON string
	err := row.Scan(&version.ID, &version.DocumentID, &version.VersionNumber, &version.AuthorID,
		&createdAt, &snapshotJSON, &version.SnapshotHash, &version.ParentVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return docversion.DocumentVersion{}, docversion.ErrNotFound
		}
		return docversion.DocumentVersion{}, fmt.Errorf("scan version: %w", err)
	}
	version.CreatedAt = fromMillis(createdAt)
	if err := json.Unmarshal([]byte(snapshotJSON), &version.Snapshot); err != nil {
		return docversion.DocumentVersion{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return version, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return strings.Contains(strings.ToLower(err.Error()), "unique")
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.VersionStore = (*Store)(nil)
