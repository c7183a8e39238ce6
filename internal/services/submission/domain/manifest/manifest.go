// Package manifest builds the normalized structural descriptor of a
// submission package: the backbone tree mapping section tags to pinned
// document versions.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"time"
)

// sectionTagPattern constrains tags to lowercase dotted segments, e.g.
// "cover-letter" or "m2.common-technical-summary".
var sectionTagPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*(?:\.[a-z0-9]+(?:-[a-z0-9]+)*)*$`)

// ValidSectionTag reports whether a tag is well-formed.
func ValidSectionTag(tag string) bool {
	return sectionTagPattern.MatchString(tag)
}

// Selection names one document (and optionally a pinned version) for a
// backbone section. An empty VersionID is resolved to the document's
// current version at build time and frozen into the manifest.
type Selection struct {
	SectionTag string `json:"sectionTag"`
	DocumentID string `json:"documentId"`
	VersionID  string `json:"versionId,omitempty"`
}

// Node is one backbone tree node. Interior nodes group dotted tag
// segments; nodes filled by a selection reference exactly one immutable
// document version.
type Node struct {
	SectionTag string `json:"sectionTag"`
	DocumentID string `json:"documentId,omitempty"`
	VersionID  string `json:"versionId,omitempty"`
	Children   []Node `json:"children,omitempty"`
}

// Leaf is a flattened backbone entry referencing a pinned version.
type Leaf struct {
	SectionTag string
	DocumentID string
	VersionID  string
}

// Manifest is the normalized structural descriptor of a submission
// package. Every filled node references a DocumentVersion, never a
// mutable Document, so the package stays reproducible even if source
// documents change later.
type Manifest struct {
	SubmissionID string    `json:"submissionId"`
	Region       string    `json:"region"`
	Backbone     Node      `json:"backbone"`
	// Incomplete flags unfilled mandatory sections. Advisory at build
	// time; the validation engine owns the hard gate.
	Incomplete      bool      `json:"incomplete"`
	MissingSections []string  `json:"missingSections,omitempty"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Leaves returns the filled backbone entries in stable tag order.
func (m Manifest) Leaves() []Leaf {
	var out []Leaf
	var walk func(Node)
	walk = func(n Node) {
		if n.VersionID != "" {
			out = append(out, Leaf{SectionTag: n.SectionTag, DocumentID: n.DocumentID, VersionID: n.VersionID})
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(m.Backbone)
	return out
}

// Leaf returns the filled entry for a section tag, if present.
func (m Manifest) Leaf(sectionTag string) (Leaf, bool) {
	for _, leaf := range m.Leaves() {
		if leaf.SectionTag == sectionTag {
			return leaf, true
		}
	}
	return Leaf{}, false
}

// HasSection reports whether the backbone fills a section tag.
func (m Manifest) HasSection(sectionTag string) bool {
	_, ok := m.Leaf(sectionTag)
	return ok
}

// Fingerprint returns a canonical digest of the backbone. Two manifests
// built from identical selections with unchanged versions share a
// fingerprint, which is what makes package assembly idempotent.
func (m Manifest) Fingerprint() string {
	h := sha256.New()
	var walk func(Node)
	walk = func(n Node) {
		h.Write([]byte(n.SectionTag))
		h.Write([]byte{'|'})
		h.Write([]byte(n.DocumentID))
		h.Write([]byte{'|'})
		h.Write([]byte(n.VersionID))
		h.Write([]byte{'\n'})
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(m.Backbone)
	return hex.EncodeToString(h.Sum(nil))
}
