// Package profile defines region-specific validation rule sets. Profiles
// are static configuration: loaded once at startup, immutable afterwards,
// and safe to share across concurrent validations.
package profile

import (
	"strings"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
)

// Severity ranks validation findings.
type Severity string

const (
	// SeverityInfo is an informational finding.
	SeverityInfo Severity = "info"
	// SeverityWarning is a finding worth fixing but not gating.
	SeverityWarning Severity = "warning"
	// SeverityError is a substantive deficiency that lowers completeness.
	SeverityError Severity = "error"
	// SeverityBlocking prevents a submission from advancing regardless of
	// its numeric completeness score.
	SeverityBlocking Severity = "blocking"
)

// ErrUnknownRegion indicates no profile is registered for a region.
var ErrUnknownRegion = apperrors.New(apperrors.CodeUnknownRegion, "no profile registered for region")

// ParseSeverity canonicalizes a severity label.
func ParseSeverity(value string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "info":
		return SeverityInfo, true
	case "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	case "blocking":
		return SeverityBlocking, true
	default:
		return "", false
	}
}

// Rule is one named check inside a profile. The predicate is declarative
// data interpreted by the validation engine.
type Rule struct {
	ID          string
	Description string
	Severity    Severity
	Predicate   Predicate
}

// Profile is a named regulatory rule set for one region.
type Profile struct {
	// Region is the registry key ("FDA", "EMA", "PMDA", ...).
	Region string
	// Name is a human-readable profile label.
	Name string
	// MandatorySections lists section tags the backbone must fill.
	MandatorySections []string
	// Weights holds the per-severity completeness penalty. Weights are
	// per-profile configuration, not global constants.
	Weights map[Severity]int
	// BlockingFloor caps the completeness score while any blocking issue
	// remains unresolved.
	BlockingFloor int
	// Rules are evaluated in declaration order; output ordering is
	// normalized downstream so declaration order never affects results.
	Rules []Rule
}

// DefaultWeights are used when a profile omits a severity weight.
var DefaultWeights = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  2,
	SeverityError:    10,
	SeverityBlocking: 25,
}

// Weight returns the completeness penalty for a severity.
func (p Profile) Weight(severity Severity) int {
	if w, ok := p.Weights[severity]; ok {
		return w
	}
	return DefaultWeights[severity]
}

// NormalizeRegion canonicalizes a region key for registry lookups.
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

// Validate checks profile configuration consistency.
func (p Profile) Validate() error {
	if NormalizeRegion(p.Region) == "" {
		return apperrors.New(apperrors.CodeProfileInvalid, "profile region is required")
	}
	for severity, weight := range p.Weights {
		if weight < 0 {
			return apperrors.WithMetadata(apperrors.CodeProfileWeightInvalid, "severity weight must be non-negative", map[string]string{
				"severity": string(severity),
			})
		}
	}
	seen := make(map[string]struct{}, len(p.Rules))
	for _, rule := range p.Rules {
		if strings.TrimSpace(rule.ID) == "" {
			return apperrors.New(apperrors.CodeProfileRuleInvalid, "rule id is required")
		}
		if _, ok := seen[rule.ID]; ok {
			return apperrors.WithMetadata(apperrors.CodeProfileRuleInvalid, "duplicate rule id", map[string]string{
				"rule_id": rule.ID,
			})
		}
		seen[rule.ID] = struct{}{}
		if _, ok := ParseSeverity(string(rule.Severity)); !ok {
			return apperrors.WithMetadata(apperrors.CodeProfileRuleInvalid, "rule severity is invalid", map[string]string{
				"rule_id":  rule.ID,
				"severity": string(rule.Severity),
			})
		}
		if err := rule.Predicate.Validate(); err != nil {
			return apperrors.WrapWithMetadata(apperrors.CodeProfileRuleInvalid, "rule predicate is invalid", map[string]string{
				"rule_id": rule.ID,
			}, err)
		}
	}
	return nil
}
