package profile

import (
	"fmt"
	"regexp"
	"strings"
)

// PredicateKind tags the check a predicate performs. Predicates are plain
// data so profiles stay declarative; the validation engine interprets them.
type PredicateKind string

const (
	// KindSectionPresent checks that the backbone fills a section tag.
	KindSectionPresent PredicateKind = "section_present"
	// KindDocumentsApproved checks that every referenced document cleared
	// review, optionally scoped to one section.
	KindDocumentsApproved PredicateKind = "documents_approved"
	// KindFieldPresent checks that a snapshot field is non-empty on the
	// scoped leaves.
	KindFieldPresent PredicateKind = "field_present"
	// KindFieldMatches checks a snapshot field against a regular
	// expression on the scoped leaves.
	KindFieldMatches PredicateKind = "field_matches"
	// KindCrossReference checks that a field carries the same value in two
	// sections, catching inconsistent cross-references between documents.
	KindCrossReference PredicateKind = "cross_reference"
)

// Predicate declares one rule check. Which parameters apply depends on Kind:
// Section scopes leaf-oriented kinds (empty means all leaves), Field and
// Pattern drive the field kinds, OtherSection names the second side of a
// cross-reference.
type Predicate struct {
	Kind         PredicateKind
	Section      string
	Field        string
	Pattern      string
	OtherSection string
}

// Validate checks the predicate declaration for the declared kind.
func (p Predicate) Validate() error {
	switch p.Kind {
	case KindSectionPresent:
		if strings.TrimSpace(p.Section) == "" {
			return fmt.Errorf("section_present requires a section")
		}
	case KindDocumentsApproved:
		// Section is optional scope.
	case KindFieldPresent:
		if strings.TrimSpace(p.Field) == "" {
			return fmt.Errorf("field_present requires a field")
		}
	case KindFieldMatches:
		if strings.TrimSpace(p.Field) == "" {
			return fmt.Errorf("field_matches requires a field")
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("field_matches pattern: %w", err)
		}
	case KindCrossReference:
		if strings.TrimSpace(p.Section) == "" || strings.TrimSpace(p.OtherSection) == "" {
			return fmt.Errorf("cross_reference requires section and other_section")
		}
		if strings.TrimSpace(p.Field) == "" {
			return fmt.Errorf("cross_reference requires a field")
		}
	default:
		return fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
	return nil
}
