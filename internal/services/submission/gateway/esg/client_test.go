package esg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
)

func testArtifact() gateway.SignedArtifact {
	return gateway.SignedArtifact{
		Artifact: gateway.Artifact{
			SubmissionID:        "sub-1",
			Region:              "FDA",
			ManifestFingerprint: "fp-1",
			Content:             []byte(`{"package":true}`),
			Digest:              "digest-1",
		},
		Signature: "sig",
		KeyID:     "key-1",
	}
}

func TestTransmit(t *testing.T) {
	var got transmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submissions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(transmitResponse{TrackingID: "trk-1"})
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	receipt, err := client.Transmit(context.Background(), testArtifact())
	if err != nil {
		t.Fatalf("transmit: %v", err)
	}
	if receipt.TrackingID != "trk-1" {
		t.Fatalf("tracking id = %q, want trk-1", receipt.TrackingID)
	}
	if got.Digest != "digest-1" || got.Signature != "sig" {
		t.Fatalf("unexpected transmitted payload: %+v", got)
	}
}

func TestTransmitRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(transmitResponse{TrackingID: "trk-2"})
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	receipt, err := client.Transmit(context.Background(), testArtifact())
	if err != nil {
		t.Fatalf("transmit: %v", err)
	}
	if receipt.TrackingID != "trk-2" {
		t.Fatalf("tracking id = %q, want trk-2", receipt.TrackingID)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestTransmitRejectionIsPermanent(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Transmit(context.Background(), testArtifact())
	if apperrors.CodeOf(err) != apperrors.CodeGatewayRejected {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeGatewayRejected)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (rejection must not retry)", calls)
	}
}

func TestTransmitUnreachableGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.maxElapsed = 50 * time.Millisecond

	_, err = client.Transmit(context.Background(), testArtifact())
	if apperrors.CodeOf(err) != apperrors.CodeGatewayUnavailable {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeGatewayUnavailable)
	}
}

func TestPollAcknowledgment(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   gateway.AckStatus
	}{
		{name: "received", status: http.StatusOK, body: `{"status":"received"}`, want: gateway.AckReceived},
		{name: "acknowledged", status: http.StatusOK, body: `{"status":"Acknowledged"}`, want: gateway.AckReceived},
		{name: "processing", status: http.StatusOK, body: `{"status":"processing"}`, want: gateway.AckPending},
		{name: "not found yet", status: http.StatusNotFound, body: ``, want: gateway.AckPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/acknowledgments/trk-1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, err := New(srv.URL)
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			status, err := client.PollAcknowledgment(context.Background(), "trk-1")
			if err != nil {
				t.Fatalf("poll: %v", err)
			}
			if status != tc.want {
				t.Fatalf("status = %v, want %v", status, tc.want)
			}
		})
	}
}

func TestPollAcknowledgmentUnreachableReportsPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	status, err := client.PollAcknowledgment(context.Background(), "trk-1")
	if status != gateway.AckPending {
		t.Fatalf("status = %v, want pending", status)
	}
	if apperrors.CodeOf(err) != apperrors.CodeGatewayUnavailable {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeGatewayUnavailable)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
