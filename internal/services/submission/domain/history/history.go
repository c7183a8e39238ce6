// Package history models the append-only audit ledger of submission
// lifecycle events. Entries are never edited or deleted; compliance
// requires an unalterable trail of record.
package history

import (
	"strings"
	"time"
)

// Event identifies the kind of lifecycle event recorded.
type Event string

const (
	// EventCreated records the creation of a submission.
	EventCreated Event = "created"
	// EventManifestBuilt records a backbone generation.
	EventManifestBuilt Event = "manifest_built"
	// EventValidated records a validation run, blocked or clear.
	EventValidated Event = "validated"
	// EventEnriched records cover letter and signature attachment.
	EventEnriched Event = "enriched"
	// EventAssembled records final artifact packaging.
	EventAssembled Event = "assembled"
	// EventTransmitted records hand-off to the transmission gateway.
	EventTransmitted Event = "transmitted"
	// EventAcknowledged records gateway confirmation of receipt.
	EventAcknowledged Event = "acknowledged"
	// EventFailed records a pipeline failure with its cause.
	EventFailed Event = "failed"
	// EventResumed records a retry re-entering the pipeline at the
	// recorded resume state.
	EventResumed Event = "resumed"
	// EventAbandoned records a submission given up before transmission.
	EventAbandoned Event = "abandoned"
)

// ParseEvent canonicalizes an event label.
func ParseEvent(value string) (Event, bool) {
	switch Event(strings.ToLower(strings.TrimSpace(value))) {
	case EventCreated:
		return EventCreated, true
	case EventManifestBuilt:
		return EventManifestBuilt, true
	case EventValidated:
		return EventValidated, true
	case EventEnriched:
		return EventEnriched, true
	case EventAssembled:
		return EventAssembled, true
	case EventTransmitted:
		return EventTransmitted, true
	case EventAcknowledged:
		return EventAcknowledged, true
	case EventFailed:
		return EventFailed, true
	case EventResumed:
		return EventResumed, true
	case EventAbandoned:
		return EventAbandoned, true
	default:
		return "", false
	}
}

// Entry is one immutable ledger record.
type Entry struct {
	SubmissionID string
	// Seq is the entry sequence number within the submission (starts at
	// 1). Assigned by storage on append.
	Seq       uint64
	Event     Event
	Timestamp time.Time
	// Detail carries structured context: scores, digests, tracking IDs,
	// failure causes.
	Detail string
}
