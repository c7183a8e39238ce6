package app

import (
	"context"
	"testing"
	"time"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/submission"
)

func TestAckPollerAdvancesTransmittedSubmissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFDADocuments(t)

	sub, err := env.service.CreateSubmission(ctx, "FDA")
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	if _, err := env.service.BuildManifest(ctx, sub.ID, fdaSelections()); err != nil {
		t.Fatalf("build manifest: %v", err)
	}
	if _, err := env.service.Validate(ctx, sub.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := env.service.Build(ctx, sub.ID); err != nil {
		t.Fatalf("build: %v", err)
	}

	pollerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- NewAckPoller(env.service).WithInterval(5 * time.Millisecond).Run(pollerCtx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		current, err := env.service.GetSubmission(ctx, sub.ID)
		if err != nil {
			t.Fatalf("get submission: %v", err)
		}
		if current.State == submission.StateAcknowledged {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("submission never acknowledged, state = %v", current.State)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("poller returned error: %v", err)
	}
}
