package profile

import (
	"errors"
	"testing"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
)

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"info", SeverityInfo, true},
		{" BLOCKING ", SeverityBlocking, true},
		{"warning", SeverityWarning, true},
		{"error", SeverityError, true},
		{"fatal", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseSeverity(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseSeverity(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestProfileWeightFallsBackToDefaults(t *testing.T) {
	p := Profile{Region: "FDA", Weights: map[Severity]int{SeverityError: 7}}
	if got := p.Weight(SeverityError); got != 7 {
		t.Fatalf("expected configured weight 7, got %d", got)
	}
	if got := p.Weight(SeverityBlocking); got != DefaultWeights[SeverityBlocking] {
		t.Fatalf("expected default blocking weight, got %d", got)
	}
}

func TestProfileValidateRejectsBadRules(t *testing.T) {
	cases := []struct {
		name    string
		profile Profile
	}{
		{"empty region", Profile{}},
		{"negative weight", Profile{Region: "FDA", Weights: map[Severity]int{SeverityError: -1}}},
		{"empty rule id", Profile{Region: "FDA", Rules: []Rule{{Severity: SeverityInfo}}}},
		{"duplicate rule id", Profile{Region: "FDA", Rules: []Rule{
			{ID: "r1", Severity: SeverityInfo, Predicate: Predicate{Kind: KindDocumentsApproved}},
			{ID: "r1", Severity: SeverityInfo, Predicate: Predicate{Kind: KindDocumentsApproved}},
		}}},
		{"bad severity", Profile{Region: "FDA", Rules: []Rule{
			{ID: "r1", Severity: "fatal", Predicate: Predicate{Kind: KindDocumentsApproved}},
		}}},
		{"bad predicate", Profile{Region: "FDA", Rules: []Rule{
			{ID: "r1", Severity: SeverityInfo, Predicate: Predicate{Kind: "magic"}},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.profile.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestPredicateValidate(t *testing.T) {
	cases := []struct {
		name      string
		predicate Predicate
		ok        bool
	}{
		{"section present", Predicate{Kind: KindSectionPresent, Section: "cover-letter"}, true},
		{"section present missing section", Predicate{Kind: KindSectionPresent}, false},
		{"documents approved unscoped", Predicate{Kind: KindDocumentsApproved}, true},
		{"field present", Predicate{Kind: KindFieldPresent, Field: "title"}, true},
		{"field matches", Predicate{Kind: KindFieldMatches, Field: "id", Pattern: "^[0-9]+$"}, true},
		{"field matches bad regexp", Predicate{Kind: KindFieldMatches, Field: "id", Pattern: "("}, false},
		{"cross reference", Predicate{Kind: KindCrossReference, Section: "a", OtherSection: "b", Field: "f"}, true},
		{"cross reference missing other", Predicate{Kind: KindCrossReference, Section: "a", Field: "f"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.predicate.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	registry, err := NewRegistry(Profile{Region: "fda", Name: "FDA"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	p, err := registry.Profile("FDA")
	if err != nil {
		t.Fatalf("profile lookup: %v", err)
	}
	if p.Name != "FDA" {
		t.Fatalf("expected FDA profile, got %q", p.Name)
	}

	// Region keys are case-insensitive.
	if _, err := registry.Profile(" fda "); err != nil {
		t.Fatalf("normalized lookup: %v", err)
	}

	_, err = registry.Profile("TGA")
	if err == nil {
		t.Fatal("expected unknown region error")
	}
	if !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}
	if apperrors.CodeOf(err) != apperrors.CodeUnknownRegion {
		t.Fatalf("expected UNKNOWN_REGION code, got %s", apperrors.CodeOf(err))
	}
}
