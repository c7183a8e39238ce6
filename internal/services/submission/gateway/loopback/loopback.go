// Package loopback is an in-process transmission gateway used in
// development and tests. It accepts every package and acknowledges it
// after a configurable number of polls, which exercises the
// pending-acknowledgment path without a real gateway.
package loopback

import (
	"context"
	"fmt"
	"sync"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/id"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
)

// Transmitter records transmissions in memory.
type Transmitter struct {
	mu sync.Mutex
	// pollsUntilAck is how many polls a transmission stays pending.
	pollsUntilAck int
	transmissions map[string]*transmission
}

type transmission struct {
	artifact gateway.SignedArtifact
	polls    int
}

// New creates a loopback transmitter that acknowledges on the first poll.
func New() *Transmitter {
	return &Transmitter{transmissions: make(map[string]*transmission)}
}

// WithPollsUntilAck keeps transmissions pending for n polls.
func (t *Transmitter) WithPollsUntilAck(n int) *Transmitter {
	t.pollsUntilAck = n
	return t
}

// Transmit accepts the artifact and mints a tracking id.
func (t *Transmitter) Transmit(_ context.Context, artifact gateway.SignedArtifact) (gateway.Receipt, error) {
	trackingID, err := id.NewID()
	if err != nil {
		return gateway.Receipt{}, fmt.Errorf("new tracking id: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.transmissions[trackingID] = &transmission{artifact: artifact}
	return gateway.Receipt{TrackingID: trackingID}, nil
}

// PollAcknowledgment reports pending until the configured poll count is
// reached, then received.
func (t *Transmitter) PollAcknowledgment(_ context.Context, trackingID string) (gateway.AckStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.transmissions[trackingID]
	if !ok {
		return gateway.AckPending, nil
	}
	tr.polls++
	if tr.polls > t.pollsUntilAck {
		return gateway.AckReceived, nil
	}
	return gateway.AckPending, nil
}

// Transmitted returns the artifact recorded for a tracking id, for tests.
func (t *Transmitter) Transmitted(trackingID string) (gateway.SignedArtifact, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.transmissions[trackingID]
	if !ok {
		return gateway.SignedArtifact{}, false
	}
	return tr.artifact, true
}

var _ gateway.Transmitter = (*Transmitter)(nil)
