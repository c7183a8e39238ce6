package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/storage"
)

// PutDocument upserts a document record. The engine itself only reads
// documents; this write side exists for seeding and the editing
// workflows that own document metadata.
func (s *Store) PutDocument(ctx context.Context, doc document.Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("document id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO documents (id, section_tag, owner_id, status, content_hash, current_version_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   section_tag = excluded.section_tag,
		   owner_id = excluded.owner_id,
		   status = excluded.status,
		   content_hash = excluded.content_hash,
		   current_version_id = excluded.current_version_id`,
		doc.ID, doc.SectionTag, doc.OwnerID, string(doc.Status), doc.ContentHash, doc.CurrentVersionID,
	)
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

// GetDocument loads a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (document.Document, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, section_tag, owner_id, status, content_hash, current_version_id
		 FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// CurrentVersionID resolves a document's current version pointer.
func (s *Store) CurrentVersionID(ctx context.Context, documentID string) (string, error) {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.CurrentVersionID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (document.Document, error) {
	var doc document.Document
	var status string
	err := row.Scan(&doc.ID, &doc.SectionTag, &doc.OwnerID, &status, &doc.ContentHash, &doc.CurrentVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, fmt.Errorf("scan document: %w", err)
	}
	if parsed, ok := document.ParseStatus(status); ok {
		doc.Status = parsed
	}
	return doc, nil
}

var _ storage.DocumentStore = (*Store)(nil)
