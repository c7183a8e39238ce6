package validation

import (
	"regexp"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/manifest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/profile"
)

// evaluate interprets one rule's declarative predicate. A passing rule
// yields nothing; a failing rule yields one issue per failing backbone
// node, each tagged with the node's section tag as its path.
func evaluate(rule profile.Rule, vctx Context) []Issue {
	switch rule.Predicate.Kind {
	case profile.KindSectionPresent:
		return evalSectionPresent(rule, vctx)
	case profile.KindDocumentsApproved:
		return evalDocumentsApproved(rule, vctx)
	case profile.KindFieldPresent:
		return evalFieldPresent(rule, vctx)
	case profile.KindFieldMatches:
		return evalFieldMatches(rule, vctx)
	case profile.KindCrossReference:
		return evalCrossReference(rule, vctx)
	}
	// Unknown kinds are rejected at profile load; an unknown kind here is
	// a configuration drift worth surfacing rather than silently passing.
	return []Issue{issue(rule, "predicate kind is not supported", "")}
}

func issue(rule profile.Rule, message, path string) Issue {
	if message == "" {
		message = rule.Description
	}
	return Issue{RuleID: rule.ID, Severity: rule.Severity, Message: message, Path: path}
}

// scopedLeaves returns the backbone leaves a leaf-oriented predicate
// applies to: the single named section, or all filled leaves.
func scopedLeaves(predicate profile.Predicate, m manifest.Manifest) []manifest.Leaf {
	if predicate.Section == "" {
		return m.Leaves()
	}
	if leaf, ok := m.Leaf(predicate.Section); ok {
		return []manifest.Leaf{leaf}
	}
	return nil
}

func evalSectionPresent(rule profile.Rule, vctx Context) []Issue {
	if vctx.Manifest.HasSection(rule.Predicate.Section) {
		return nil
	}
	return []Issue{issue(rule, "required section is not filled", rule.Predicate.Section)}
}

func evalDocumentsApproved(rule profile.Rule, vctx Context) []Issue {
	var issues []Issue
	for _, leaf := range scopedLeaves(rule.Predicate, vctx.Manifest) {
		doc, ok := vctx.Documents[leaf.DocumentID]
		if !ok {
			issues = append(issues, issue(rule, "referenced document is unavailable", leaf.SectionTag))
			continue
		}
		if !doc.Approved() {
			issues = append(issues, issue(rule, "referenced document is not approved", leaf.SectionTag))
		}
	}
	return issues
}

func evalFieldPresent(rule profile.Rule, vctx Context) []Issue {
	var issues []Issue
	for _, leaf := range scopedLeaves(rule.Predicate, vctx.Manifest) {
		version, ok := vctx.Versions[leaf.VersionID]
		if !ok {
			issues = append(issues, issue(rule, "pinned version is unavailable", leaf.SectionTag))
			continue
		}
		if version.Snapshot[rule.Predicate.Field] == "" {
			issues = append(issues, issue(rule, "required field is empty", leaf.SectionTag))
		}
	}
	return issues
}

func evalFieldMatches(rule profile.Rule, vctx Context) []Issue {
	matcher, err := regexp.Compile(rule.Predicate.Pattern)
	if err != nil {
		return []Issue{issue(rule, "field pattern does not compile", "")}
	}

	var issues []Issue
	for _, leaf := range scopedLeaves(rule.Predicate, vctx.Manifest) {
		version, ok := vctx.Versions[leaf.VersionID]
		if !ok {
			issues = append(issues, issue(rule, "pinned version is unavailable", leaf.SectionTag))
			continue
		}
		if !matcher.MatchString(version.Snapshot[rule.Predicate.Field]) {
			issues = append(issues, issue(rule, "field does not match the required format", leaf.SectionTag))
		}
	}
	return issues
}

func evalCrossReference(rule profile.Rule, vctx Context) []Issue {
	// Both sections must be filled before the cross-check is meaningful;
	// mandatory-section gating reports the absence separately.
	left, leftOK := vctx.Manifest.Leaf(rule.Predicate.Section)
	right, rightOK := vctx.Manifest.Leaf(rule.Predicate.OtherSection)
	if !leftOK || !rightOK {
		return nil
	}

	leftVersion, ok := vctx.Versions[left.VersionID]
	if !ok {
		return []Issue{issue(rule, "pinned version is unavailable", left.SectionTag)}
	}
	rightVersion, ok := vctx.Versions[right.VersionID]
	if !ok {
		return []Issue{issue(rule, "pinned version is unavailable", right.SectionTag)}
	}

	if leftVersion.Snapshot[rule.Predicate.Field] != rightVersion.Snapshot[rule.Predicate.Field] {
		return []Issue{issue(rule, "field values disagree between sections", right.SectionTag)}
	}
	return nil
}
