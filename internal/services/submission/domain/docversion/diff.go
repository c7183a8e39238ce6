package docversion

import "sort"

// Diff describes field-level differences between two snapshots in the
// A-to-B direction.
type Diff struct {
	// Additions are fields present in B but not A.
	Additions []string
	// Deletions are fields present in A but not B.
	Deletions []string
	// ChangedFields are fields present in both with different values.
	ChangedFields []string
}

// Empty reports whether the two snapshots were identical.
func (d Diff) Empty() bool {
	return len(d.Additions) == 0 && len(d.Deletions) == 0 && len(d.ChangedFields) == 0
}

// Compare computes the field-level diff from snapshot a to snapshot b.
// It is a pure function over the two immutable snapshots; output slices
// are sorted for stable presentation.
func Compare(a, b Snapshot) Diff {
	var diff Diff
	for field, valueA := range a {
		valueB, ok := b[field]
		if !ok {
			diff.Deletions = append(diff.Deletions, field)
			continue
		}
		if valueA != valueB {
			diff.ChangedFields = append(diff.ChangedFields, field)
		}
	}
	for field := range b {
		if _, ok := a[field]; !ok {
			diff.Additions = append(diff.Additions, field)
		}
	}
	sort.Strings(diff.Additions)
	sort.Strings(diff.Deletions)
	sort.Strings(diff.ChangedFields)
	return diff
}
