package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/history"
)

func TestAppendHistoryAssignsSequence(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)
	events := []history.Event{history.EventCreated, history.EventManifestBuilt, history.EventValidated}
	for i, event := range events {
		entry, err := store.AppendHistory(ctx, history.Entry{
			SubmissionID: "sub-1",
			Event:        event,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			Detail:       "step",
		})
		if err != nil {
			t.Fatalf("append %s: %v", event, err)
		}
		if entry.Seq != uint64(i+1) {
			t.Fatalf("expected seq %d, got %d", i+1, entry.Seq)
		}
	}

	// Sequences are per submission.
	entry, err := store.AppendHistory(ctx, history.Entry{
		SubmissionID: "sub-2",
		Event:        history.EventCreated,
		Timestamp:    base,
	})
	if err != nil {
		t.Fatalf("append for sub-2: %v", err)
	}
	if entry.Seq != 1 {
		t.Fatalf("expected seq 1 for new submission, got %d", entry.Seq)
	}
}

func TestListHistoryOrdersByTimestampThenSeq(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)
	// Two entries share a timestamp; sequence breaks the tie.
	inputs := []history.Entry{
		{SubmissionID: "sub-1", Event: history.EventCreated, Timestamp: base},
		{SubmissionID: "sub-1", Event: history.EventManifestBuilt, Timestamp: base},
		{SubmissionID: "sub-1", Event: history.EventValidated, Timestamp: base.Add(time.Second)},
	}
	for _, input := range inputs {
		if _, err := store.AppendHistory(ctx, input); err != nil {
			t.Fatalf("append %s: %v", input.Event, err)
		}
	}

	entries, err := store.ListHistory(ctx, "sub-1")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []history.Event{history.EventCreated, history.EventManifestBuilt, history.EventValidated}
	for i, entry := range entries {
		if entry.Event != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], entry.Event)
		}
		if entry.Seq != uint64(i+1) {
			t.Fatalf("entry %d: expected seq %d, got %d", i, i+1, entry.Seq)
		}
	}
}

func TestAppendHistoryRejectsBadInput(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.AppendHistory(ctx, history.Entry{Event: history.EventCreated}); err == nil {
		t.Fatal("expected error for missing submission id")
	}
	if _, err := store.AppendHistory(ctx, history.Entry{SubmissionID: "sub-1", Event: "edited"}); err == nil {
		t.Fatal("expected error for unknown event")
	}
}
