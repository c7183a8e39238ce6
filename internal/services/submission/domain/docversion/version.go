// Package docversion models the immutable, linear version history of
// authored documents. Every submission pins exact versions, so records
// here are never edited or deleted once written.
package docversion

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
)

// ErrNotFound indicates a requested document version does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeVersionNotFound, "document version not found")

// ErrEmptyDocumentID indicates a version operation without a document.
var ErrEmptyDocumentID = apperrors.New(apperrors.CodeVersionEmptyDocumentID, "document id is required")

// ErrEmptySnapshot indicates a version create without content.
var ErrEmptySnapshot = apperrors.New(apperrors.CodeVersionEmptySnapshot, "snapshot is required")

// Snapshot is the captured field content of a document version. Fields are
// flat name/value pairs; the canonical hash over sorted entries acts as the
// content-addressed snapshot reference.
type Snapshot map[string]string

// Hash returns the canonical content hash of the snapshot.
func (s Snapshot) Hash() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(s[k]))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DocumentVersion is one immutable entry in a document's linear history.
// Version numbers per document are strictly increasing and gapless.
type DocumentVersion struct {
	ID              string
	DocumentID      string
	VersionNumber   uint64
	AuthorID        string
	CreatedAt       time.Time
	Snapshot        Snapshot
	SnapshotHash    string
	ParentVersionID string
}
