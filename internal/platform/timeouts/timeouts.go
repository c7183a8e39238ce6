// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// GatewayCall caps a single signing or transmission gateway request.
const GatewayCall = 10 * time.Second

// GatewayRetry bounds the total time spent retrying a failing gateway call.
const GatewayRetry = 30 * time.Second

// AckPoll is the interval between acknowledgment polling sweeps.
const AckPoll = 15 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
