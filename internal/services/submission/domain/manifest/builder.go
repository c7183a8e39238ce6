package manifest

import (
	"context"
	"sort"
	"strings"
	"time"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
)

// ErrDuplicateSection indicates two selections target the same section tag.
var ErrDuplicateSection = apperrors.New(apperrors.CodeDuplicateSection, "section is selected more than once")

// ErrEmptySelection indicates a build request without selections.
var ErrEmptySelection = apperrors.New(apperrors.CodeManifestEmptySelection, "at least one document selection is required")

// Resolver resolves a document's current version at build time. It is the
// narrow read-only contract the engine consumes from the document
// repository.
type Resolver interface {
	CurrentVersionID(ctx context.Context, documentID string) (string, error)
}

// Build assembles a manifest from document selections. Omitted version IDs
// resolve to each document's current version and are frozen in. Unfilled
// mandatory sections mark the manifest incomplete rather than failing the
// build; hard gating happens during validation.
func Build(ctx context.Context, submissionID, region string, mandatorySections []string, selections []Selection, resolver Resolver, now time.Time) (Manifest, error) {
	if len(selections) == 0 {
		return Manifest{}, ErrEmptySelection
	}

	resolved := make([]Selection, 0, len(selections))
	seen := make(map[string]struct{}, len(selections))
	for _, sel := range selections {
		tag := strings.TrimSpace(sel.SectionTag)
		if !ValidSectionTag(tag) {
			return Manifest{}, apperrors.WithMetadata(apperrors.CodeManifestSectionTagInvalid, "section tag is malformed", map[string]string{
				"section_tag": sel.SectionTag,
			})
		}
		if _, dup := seen[tag]; dup {
			return Manifest{}, apperrors.WithMetadata(apperrors.CodeDuplicateSection, "section is selected more than once", map[string]string{
				"section_tag": tag,
			})
		}
		seen[tag] = struct{}{}

		versionID := strings.TrimSpace(sel.VersionID)
		if versionID == "" {
			current, err := resolver.CurrentVersionID(ctx, sel.DocumentID)
			if err != nil {
				return Manifest{}, err
			}
			versionID = current
		}
		if versionID == "" {
			return Manifest{}, apperrors.WithMetadata(apperrors.CodeVersionNotFound, "document has no versions to pin", map[string]string{
				"document_id": sel.DocumentID,
			})
		}
		resolved = append(resolved, Selection{SectionTag: tag, DocumentID: sel.DocumentID, VersionID: versionID})
	}

	// Stable tag order makes repeated builds byte-identical.
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].SectionTag < resolved[j].SectionTag })

	var missing []string
	for _, mandatory := range mandatorySections {
		if _, ok := seen[mandatory]; !ok {
			missing = append(missing, mandatory)
		}
	}
	sort.Strings(missing)

	return Manifest{
		SubmissionID:    submissionID,
		Region:          region,
		Backbone:        buildTree(resolved),
		Incomplete:      len(missing) > 0,
		MissingSections: missing,
		GeneratedAt:     now.UTC(),
	}, nil
}

// buildTree arranges resolved selections into the backbone tree, grouping
// dotted tag segments into interior nodes.
func buildTree(selections []Selection) Node {
	root := Node{}
	for _, sel := range selections {
		insert(&root, "", strings.Split(sel.SectionTag, "."), sel)
	}
	return root
}

func insert(parent *Node, prefix string, segments []string, sel Selection) {
	tag := segments[0]
	if prefix != "" {
		tag = prefix + "." + segments[0]
	}

	var child *Node
	for i := range parent.Children {
		if parent.Children[i].SectionTag == tag {
			child = &parent.Children[i]
			break
		}
	}
	if child == nil {
		parent.Children = append(parent.Children, Node{SectionTag: tag})
		child = &parent.Children[len(parent.Children)-1]
	}

	if len(segments) == 1 {
		child.DocumentID = sel.DocumentID
		child.VersionID = sel.VersionID
		return
	}
	insert(child, tag, segments[1:], sel)
}
