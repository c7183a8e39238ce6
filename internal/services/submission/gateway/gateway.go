// Package gateway defines the contracts for the external signing and
// transmission services a submission package passes through after
// validation. The engine treats both as at-least-once collaborators.
package gateway

import (
	"context"
	"time"
)

// Artifact is the assembled submission package handed to the signer.
// Content is the canonical package encoding; Digest is its sha256.
type Artifact struct {
	SubmissionID        string
	Region              string
	ManifestFingerprint string
	Content             []byte
	Digest              string
}

// SignedArtifact is the artifact plus its detached signature.
type SignedArtifact struct {
	Artifact
	Signature string
	KeyID     string
	SignedAt  time.Time
}

// Receipt identifies a transmission for acknowledgment tracking.
type Receipt struct {
	TrackingID string
}

// AckStatus reports an asynchronous acknowledgment poll outcome.
type AckStatus string

const (
	// AckPending means the gateway has not confirmed receipt yet. This is
	// "we don't know", never "it failed".
	AckPending AckStatus = "pending"
	// AckReceived means the gateway confirmed receipt.
	AckReceived AckStatus = "received"
)

// Signer signs an assembled artifact.
type Signer interface {
	Sign(ctx context.Context, artifact Artifact) (SignedArtifact, error)
}

// Transmitter hands a signed artifact to the regulatory gateway and
// polls for the asynchronous acknowledgment.
type Transmitter interface {
	Transmit(ctx context.Context, artifact SignedArtifact) (Receipt, error)
	PollAcknowledgment(ctx context.Context, trackingID string) (AckStatus, error)
}
