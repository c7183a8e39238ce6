package history

import "testing"

func TestParseEvent(t *testing.T) {
	for _, event := range []Event{
		EventCreated, EventManifestBuilt, EventValidated, EventEnriched,
		EventAssembled, EventTransmitted, EventAcknowledged, EventFailed,
		EventResumed, EventAbandoned,
	} {
		got, ok := ParseEvent(string(event))
		if !ok || got != event {
			t.Fatalf("ParseEvent(%q) = (%v, %v)", event, got, ok)
		}
	}
	if _, ok := ParseEvent("edited"); ok {
		t.Fatal("expected unknown event to be rejected")
	}
}
