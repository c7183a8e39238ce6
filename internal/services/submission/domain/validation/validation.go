// Package validation evaluates regulatory rule profiles against a manifest
// and its pinned document versions.
package validation

import (
	"sort"
	"time"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/docversion"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/manifest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/profile"
)

// Issue is one structured validation finding. Issues are data, never
// exceptions: UIs render and filter them by severity, message, and path.
type Issue struct {
	RuleID   string           `json:"ruleId"`
	Severity profile.Severity `json:"severity"`
	Message  string           `json:"message"`
	Path     string           `json:"path,omitempty"`
}

// Result is the categorized outcome of one validation run.
type Result struct {
	SubmissionID  string  `json:"submissionId"`
	ProfileRegion string  `json:"profileRegion"`
	Issues        []Issue `json:"issues"`
	// CompletenessScore is informational; HasBlockingIssues is the hard
	// gate the state machine consults, so a single catastrophic gap can
	// never slip through on a good numeric score.
	CompletenessScore int       `json:"completenessScore"`
	HasBlockingIssues bool      `json:"hasBlockingIssues"`
	EvaluatedAt       time.Time `json:"evaluatedAt"`
}

// Context carries the resolved state a rule predicate is evaluated
// against: the manifest plus every pinned document version and its
// source document metadata.
type Context struct {
	Manifest  manifest.Manifest
	Documents map[string]document.Document
	Versions  map[string]docversion.DocumentVersion
}

// Validate evaluates every profile rule against the context and returns
// the categorized issue list. Unfilled mandatory sections are synthesized
// as blocking issues so an incomplete manifest always blocks. Output is
// sorted by (ruleId, path); rule evaluation order never affects results.
func Validate(vctx Context, p profile.Profile, now time.Time) Result {
	var issues []Issue

	for _, section := range p.MandatorySections {
		if !vctx.Manifest.HasSection(section) {
			issues = append(issues, Issue{
				RuleID:   "missing-" + section,
				Severity: profile.SeverityBlocking,
				Message:  "mandatory section is not filled",
				Path:     section,
			})
		}
	}

	for _, rule := range p.Rules {
		issues = append(issues, evaluate(rule, vctx)...)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].RuleID != issues[j].RuleID {
			return issues[i].RuleID < issues[j].RuleID
		}
		return issues[i].Path < issues[j].Path
	})

	score := 100
	hasBlocking := false
	for _, issue := range issues {
		score -= p.Weight(issue.Severity)
		if issue.Severity == profile.SeverityBlocking {
			hasBlocking = true
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if hasBlocking && score > p.BlockingFloor {
		score = p.BlockingFloor
	}

	return Result{
		SubmissionID:      vctx.Manifest.SubmissionID,
		ProfileRegion:     p.Region,
		Issues:            issues,
		CompletenessScore: score,
		HasBlockingIssues: hasBlocking,
		EvaluatedAt:       now.UTC(),
	}
}

// BlockingCount returns the number of blocking issues in the result.
func (r Result) BlockingCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == profile.SeverityBlocking {
			count++
		}
	}
	return count
}
