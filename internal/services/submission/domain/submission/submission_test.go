package submission

import (
	"errors"
	"testing"
	"time"
)

var createTime = time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)

func TestNewSubmission(t *testing.T) {
	s, err := New("sub-1", " fda ", createTime)
	if err != nil {
		t.Fatalf("new submission: %v", err)
	}
	if s.State != StateDraft {
		t.Fatalf("expected draft state, got %s", s.State)
	}
	if s.Region != "FDA" {
		t.Fatalf("expected normalized region FDA, got %q", s.Region)
	}

	if _, err := New("sub-2", "  ", createTime); !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("expected empty region error, got %v", err)
	}
}

func TestParseState(t *testing.T) {
	for _, state := range []State{
		StateDraft, StateManifestBuilt, StateValidatedBlocked, StateValidatedClear,
		StateEnriched, StateAssembled, StateTransmitted, StateAcknowledged,
		StateFailed, StateAbandoned,
	} {
		got, ok := ParseState(string(state))
		if !ok || got != state {
			t.Fatalf("ParseState(%q) = (%v, %v)", state, got, ok)
		}
	}
	if _, ok := ParseState("shipped"); ok {
		t.Fatal("expected unknown state to be rejected")
	}
}

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateDraft, StateManifestBuilt},
		{StateDraft, StateAbandoned},
		{StateManifestBuilt, StateManifestBuilt},
		{StateManifestBuilt, StateValidatedBlocked},
		{StateManifestBuilt, StateValidatedClear},
		{StateManifestBuilt, StateAbandoned},
		{StateValidatedBlocked, StateDraft},
		{StateValidatedBlocked, StateManifestBuilt},
		{StateValidatedClear, StateEnriched},
		{StateValidatedClear, StateManifestBuilt},
		{StateValidatedClear, StateFailed},
		{StateEnriched, StateAssembled},
		{StateEnriched, StateFailed},
		{StateAssembled, StateTransmitted},
		{StateAssembled, StateFailed},
		{StateTransmitted, StateAcknowledged},
		{StateFailed, StateValidatedClear},
	}
	for _, tc := range allowed {
		if !IsTransitionAllowed(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to State }{
		{StateValidatedBlocked, StateEnriched},
		{StateValidatedBlocked, StateAssembled},
		{StateDraft, StateValidatedClear},
		{StateDraft, StateEnriched},
		{StateTransmitted, StateDraft},
		{StateTransmitted, StateFailed},
		{StateTransmitted, StateAbandoned},
		{StateAcknowledged, StateDraft},
		{StateAbandoned, StateDraft},
		{StateEnriched, StateTransmitted},
		{StateValidatedClear, StateAssembled},
		{StateFailed, StateDraft},
	}
	for _, tc := range forbidden {
		if IsTransitionAllowed(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be refused", tc.from, tc.to)
		}
	}
}

func TestBlockedSubmissionCannotReachEnrichment(t *testing.T) {
	// Exhaustive: from validated_blocked only draft and manifest_built are legal.
	targets := []State{
		StateDraft, StateManifestBuilt, StateValidatedBlocked, StateValidatedClear,
		StateEnriched, StateAssembled, StateTransmitted, StateAcknowledged,
		StateFailed, StateAbandoned,
	}
	for _, to := range targets {
		got := IsTransitionAllowed(StateValidatedBlocked, to)
		want := to == StateDraft || to == StateManifestBuilt
		if got != want {
			t.Fatalf("validated_blocked -> %s: got %v, want %v", to, got, want)
		}
	}
}

func TestAbandonableAndTerminal(t *testing.T) {
	cases := []struct {
		state       State
		abandonable bool
		terminal    bool
	}{
		{StateDraft, true, false},
		{StateManifestBuilt, true, false},
		{StateValidatedClear, false, false},
		{StateTransmitted, false, false},
		{StateAcknowledged, false, true},
		{StateAbandoned, false, true},
	}
	for _, tc := range cases {
		s := Submission{State: tc.state}
		if s.Abandonable() != tc.abandonable {
			t.Fatalf("%s: Abandonable = %v, want %v", tc.state, s.Abandonable(), tc.abandonable)
		}
		if s.Terminal() != tc.terminal {
			t.Fatalf("%s: Terminal = %v, want %v", tc.state, s.Terminal(), tc.terminal)
		}
	}
}
