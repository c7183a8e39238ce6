package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/docversion"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir() + "/submission.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedDocument(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.PutDocument(context.Background(), document.Document{
		ID:         id,
		SectionTag: "cover-letter",
		OwnerID:    "author-1",
		Status:     document.StatusApproved,
	})
	if err != nil {
		t.Fatalf("seed document %s: %v", id, err)
	}
}

func TestCreateVersionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	seedDocument(t, store, "doc-1")

	snapshot := docversion.Snapshot{"title": "Cover Letter", "body": "To whom it may concern"}
	created, err := store.CreateVersion(context.Background(), "doc-1", snapshot, "author-1")
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if created.VersionNumber != 1 {
		t.Fatalf("expected version number 1, got %d", created.VersionNumber)
	}
	if created.ParentVersionID != "" {
		t.Fatalf("expected no parent for first version, got %q", created.ParentVersionID)
	}

	loaded, err := store.GetVersion(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if loaded.Snapshot["title"] != "Cover Letter" || loaded.Snapshot["body"] != "To whom it may concern" {
		t.Fatalf("snapshot did not round-trip: %+v", loaded.Snapshot)
	}
	if loaded.SnapshotHash != snapshot.Hash() {
		t.Fatal("expected snapshot hash to round-trip")
	}

	// The document's current version pointer advances.
	currentID, err := store.CurrentVersionID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("current version id: %v", err)
	}
	if currentID != created.ID {
		t.Fatalf("expected current version %s, got %s", created.ID, currentID)
	}
}

func TestCreateVersionNumbersAreGapless(t *testing.T) {
	store := openTestStore(t)
	seedDocument(t, store, "doc-1")

	const n = 8
	for i := 0; i < n; i++ {
		snapshot := docversion.Snapshot{"title": "Cover Letter", "rev": string(rune('a' + i))}
		if _, err := store.CreateVersion(context.Background(), "doc-1", snapshot, "author-1"); err != nil {
			t.Fatalf("create version %d: %v", i, err)
		}
	}

	versions, err := store.ListVersions(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != n {
		t.Fatalf("expected %d versions, got %d", n, len(versions))
	}
	for i, version := range versions {
		if version.VersionNumber != uint64(i+1) {
			t.Fatalf("expected gapless numbering, got %d at index %d", version.VersionNumber, i)
		}
		if i > 0 && version.ParentVersionID != versions[i-1].ID {
			t.Fatalf("expected linear parent chain at version %d", version.VersionNumber)
		}
	}
}

func TestCreateVersionUnknownDocument(t *testing.T) {
	store := openTestStore(t)
	_, err := store.CreateVersion(context.Background(), "doc-missing", docversion.Snapshot{"title": "x"}, "author-1")
	if !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("expected document not found, got %v", err)
	}
}

func TestCreateVersionRejectsEmptyInput(t *testing.T) {
	store := openTestStore(t)
	seedDocument(t, store, "doc-1")

	if _, err := store.CreateVersion(context.Background(), "", docversion.Snapshot{"title": "x"}, "a"); !errors.Is(err, docversion.ErrEmptyDocumentID) {
		t.Fatalf("expected empty document id error, got %v", err)
	}
	if _, err := store.CreateVersion(context.Background(), "doc-1", nil, "a"); !errors.Is(err, docversion.ErrEmptySnapshot) {
		t.Fatalf("expected empty snapshot error, got %v", err)
	}
}

func TestGetVersionNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetVersion(context.Background(), "v-missing"); !errors.Is(err, docversion.ErrNotFound) {
		t.Fatalf("expected version not found, got %v", err)
	}
}

func TestRestoreCopiesSnapshotForward(t *testing.T) {
	store := openTestStore(t)
	seedDocument(t, store, "doc-1")

	ctx := context.Background()
	v1, err := store.CreateVersion(ctx, "doc-1", docversion.Snapshot{"title": "Original"}, "author-1")
	if err != nil {
		t.Fatalf("create v1: %v", err)
	}
	if _, err := store.CreateVersion(ctx, "doc-1", docversion.Snapshot{"title": "Edited"}, "author-1"); err != nil {
		t.Fatalf("create v2: %v", err)
	}
	v3, err := store.CreateVersion(ctx, "doc-1", docversion.Snapshot{"title": "Edited again"}, "author-1")
	if err != nil {
		t.Fatalf("create v3: %v", err)
	}

	restored, err := store.RestoreVersion(ctx, "doc-1", v1.ID, "author-2")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.VersionNumber != 4 {
		t.Fatalf("expected restore to mint version 4, got %d", restored.VersionNumber)
	}
	// Restore records forward motion: the parent is the previous current
	// version, not the restore target.
	if restored.ParentVersionID != v3.ID {
		t.Fatalf("expected parent %s, got %s", v3.ID, restored.ParentVersionID)
	}
	if diff := docversion.Compare(v1.Snapshot, restored.Snapshot); !diff.Empty() {
		t.Fatalf("expected restored snapshot to equal target, diff %+v", diff)
	}
}

func TestRestoreRejectsForeignVersion(t *testing.T) {
	store := openTestStore(t)
	seedDocument(t, store, "doc-1")
	seedDocument(t, store, "doc-2")

	ctx := context.Background()
	v1, err := store.CreateVersion(ctx, "doc-1", docversion.Snapshot{"title": "x"}, "author-1")
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if _, err := store.RestoreVersion(ctx, "doc-2", v1.ID, "author-1"); !errors.Is(err, docversion.ErrNotFound) {
		t.Fatalf("expected not found for foreign version, got %v", err)
	}
}
