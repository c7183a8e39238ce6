package submission

import "strings"

// State labels a submission's position in the build pipeline.
type State string

const (
	// StateUnspecified represents an invalid state value.
	StateUnspecified State = ""
	// StateDraft is the initial document-selection state.
	StateDraft State = "draft"
	// StateManifestBuilt indicates the backbone has been generated.
	StateManifestBuilt State = "manifest_built"
	// StateValidatedBlocked indicates validation found blocking issues.
	StateValidatedBlocked State = "validated_blocked"
	// StateValidatedClear indicates validation passed the hard gate.
	StateValidatedClear State = "validated_clear"
	// StateEnriched indicates cover letter and signature are attached.
	StateEnriched State = "enriched"
	// StateAssembled indicates the final artifact has been packaged.
	StateAssembled State = "assembled"
	// StateTransmitted indicates the package was handed to the gateway.
	StateTransmitted State = "transmitted"
	// StateAcknowledged indicates the gateway confirmed receipt.
	StateAcknowledged State = "acknowledged"
	// StateFailed is the absorbing failure state; ResumeState records the
	// re-entry point for retries.
	StateFailed State = "failed"
	// StateAbandoned indicates the submission was given up before
	// transmission.
	StateAbandoned State = "abandoned"
)

// ParseState canonicalizes a state label.
func ParseState(value string) (State, bool) {
	switch State(strings.ToLower(strings.TrimSpace(value))) {
	case StateDraft:
		return StateDraft, true
	case StateManifestBuilt:
		return StateManifestBuilt, true
	case StateValidatedBlocked:
		return StateValidatedBlocked, true
	case StateValidatedClear:
		return StateValidatedClear, true
	case StateEnriched:
		return StateEnriched, true
	case StateAssembled:
		return StateAssembled, true
	case StateTransmitted:
		return StateTransmitted, true
	case StateAcknowledged:
		return StateAcknowledged, true
	case StateFailed:
		return StateFailed, true
	case StateAbandoned:
		return StateAbandoned, true
	default:
		return StateUnspecified, false
	}
}

// isTransitionAllowed enforces the package build lifecycle. Re-selecting
// documents from a validated state returns the pipeline to
// manifest_built; a blocked validation may go nowhere else. Failed
// submissions re-enter at their recorded resume state, checked by the
// caller against ResumeState.
func isTransitionAllowed(from, to State) bool {
	switch from {
	case StateDraft:
		return to == StateManifestBuilt || to == StateAbandoned
	case StateManifestBuilt:
		return to == StateManifestBuilt ||
			to == StateValidatedBlocked ||
			to == StateValidatedClear ||
			to == StateAbandoned
	case StateValidatedBlocked:
		// The only way forward is back: re-select documents.
		return to == StateDraft || to == StateManifestBuilt
	case StateValidatedClear:
		return to == StateManifestBuilt ||
			to == StateValidatedBlocked ||
			to == StateValidatedClear ||
			to == StateEnriched ||
			to == StateFailed
	case StateEnriched:
		return to == StateAssembled || to == StateFailed
	case StateAssembled:
		return to == StateTransmitted || to == StateFailed
	case StateTransmitted:
		return to == StateAcknowledged
	case StateFailed:
		return to == StateValidatedClear || to == StateEnriched || to == StateAssembled
	default:
		return false
	}
}

// IsTransitionAllowed reports whether a lifecycle transition is permitted.
func IsTransitionAllowed(from, to State) bool {
	return isTransitionAllowed(from, to)
}
