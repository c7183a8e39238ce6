// Package esg implements the transmission gateway contract against an
// electronic submissions gateway's HTTP API. Transmission is
// at-least-once: transient failures are retried with exponential backoff
// up to a bounded elapsed time before surfacing as gateway errors.
package esg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/timeouts"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
)

// Client talks to the gateway's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxElapsed time.Duration
}

// New creates a gateway client for a base URL.
func New(baseURL string) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	return &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeouts.GatewayCall},
		maxElapsed: timeouts.GatewayRetry,
	}, nil
}

type transmitRequest struct {
	SubmissionID        string `json:"submissionId"`
	Region              string `json:"region"`
	ManifestFingerprint string `json:"manifestFingerprint"`
	Digest              string `json:"digest"`
	Signature           string `json:"signature"`
	KeyID               string `json:"keyId"`
	Content             []byte `json:"content"`
}

type transmitResponse struct {
	TrackingID string `json:"trackingId"`
}

// Transmit hands the signed artifact to the gateway. Retries cover
// transient transport and 5xx failures; 4xx responses are permanent
// rejections.
func (c *Client) Transmit(ctx context.Context, artifact gateway.SignedArtifact) (gateway.Receipt, error) {
	body, err := json.Marshal(transmitRequest{
		SubmissionID:        artifact.SubmissionID,
		Region:              artifact.Region,
		ManifestFingerprint: artifact.ManifestFingerprint,
		Digest:              artifact.Digest,
		Signature:           artifact.Signature,
		KeyID:               artifact.KeyID,
		Content:             artifact.Content,
	})
	if err != nil {
		return gateway.Receipt{}, fmt.Errorf("encode transmit request: %w", err)
	}

	operation := func() (gateway.Receipt, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submissions", bytes.NewReader(body))
		if err != nil {
			return gateway.Receipt{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return gateway.Receipt{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return gateway.Receipt{}, fmt.Errorf("gateway returned %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return gateway.Receipt{}, backoff.Permanent(
				apperrors.WithMetadata(apperrors.CodeGatewayRejected, "gateway rejected the package", map[string]string{
					"status": fmt.Sprintf("%d", resp.StatusCode),
				}))
		}

		var decoded transmitResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return gateway.Receipt{}, fmt.Errorf("decode transmit response: %w", err)
		}
		if decoded.TrackingID == "" {
			return gateway.Receipt{}, backoff.Permanent(
				apperrors.New(apperrors.CodeGatewayRejected, "gateway returned no tracking id"))
		}
		return gateway.Receipt{TrackingID: decoded.TrackingID}, nil
	}

	receipt, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeGatewayRejected {
			return gateway.Receipt{}, err
		}
		return gateway.Receipt{}, apperrors.Wrap(apperrors.CodeGatewayUnavailable, "transmit package", err)
	}
	return receipt, nil
}

type ackResponse struct {
	Status string `json:"status"`
}

// PollAcknowledgment asks the gateway whether a transmission has been
// acknowledged. Transport failures and unknown answers report pending:
// an acknowledgment poll may say "we don't know yet", never "it failed".
func (c *Client) PollAcknowledgment(ctx context.Context, trackingID string) (gateway.AckStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/acknowledgments/"+trackingID, nil)
	if err != nil {
		return gateway.AckPending, fmt.Errorf("build ack request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gateway.AckPending, apperrors.Wrap(apperrors.CodeGatewayUnavailable, "poll acknowledgment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gateway.AckPending, nil
	}

	var decoded ackResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return gateway.AckPending, fmt.Errorf("decode ack response: %w", err)
	}
	if strings.EqualFold(decoded.Status, "received") || strings.EqualFold(decoded.Status, "acknowledged") {
		return gateway.AckReceived, nil
	}
	return gateway.AckPending, nil
}

var _ gateway.Transmitter = (*Client)(nil)
