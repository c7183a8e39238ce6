package app

import (
	"context"
	"log"
	"time"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/timeouts"
)

// AckPoller periodically advances transmitted submissions whose gateway
// acknowledgment has arrived.
type AckPoller struct {
	service  *Service
	interval time.Duration
}

// NewAckPoller creates a poller on the shared acknowledgment interval.
func NewAckPoller(service *Service) *AckPoller {
	return &AckPoller{service: service, interval: timeouts.AckPoll}
}

// WithInterval overrides the polling interval, for tests.
func (p *AckPoller) WithInterval(interval time.Duration) *AckPoller {
	p.interval = interval
	return p
}

// Run polls until the context is canceled. Poll failures are logged and
// retried on the next tick; they never stop the loop.
func (p *AckPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.service.PollAcknowledgments(ctx); err != nil {
				log.Printf("acknowledgment poll: %v", err)
			}
		}
	}
}
