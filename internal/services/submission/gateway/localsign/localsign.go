// Package localsign signs submission artifacts with an HMAC key held by
// the service itself. The signature is a detached JWS over the artifact
// digest, which keeps signed packages verifiable without calling back
// into the service.
package localsign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
)

// Signer issues HS256 detached signatures over artifact digests.
type Signer struct {
	keyID string
	key   []byte
	now   func() time.Time
}

// New creates a local signer from a key id and secret.
func New(keyID string, key []byte) (*Signer, error) {
	if strings.TrimSpace(keyID) == "" {
		return nil, fmt.Errorf("signing key id is required")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("signing key is required")
	}
	return &Signer{keyID: keyID, key: key, now: time.Now}, nil
}

// WithClock overrides the signing clock, for tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

type digestClaims struct {
	Digest              string `json:"digest"`
	Region              string `json:"region"`
	ManifestFingerprint string `json:"manifestFingerprint"`
	jwt.RegisteredClaims
}

// Sign produces the detached JWS for an assembled artifact.
func (s *Signer) Sign(_ context.Context, artifact gateway.Artifact) (gateway.SignedArtifact, error) {
	if artifact.Digest == "" {
		return gateway.SignedArtifact{}, apperrors.New(apperrors.CodeGatewayRejected, "artifact digest is required for signing")
	}

	signedAt := s.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, digestClaims{
		Digest:              artifact.Digest,
		Region:              artifact.Region,
		ManifestFingerprint: artifact.ManifestFingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  artifact.SubmissionID,
			IssuedAt: jwt.NewNumericDate(signedAt),
		},
	})
	token.Header["kid"] = s.keyID

	signature, err := token.SignedString(s.key)
	if err != nil {
		return gateway.SignedArtifact{}, apperrors.Wrap(apperrors.CodeGatewayUnavailable, "sign artifact", err)
	}

	return gateway.SignedArtifact{
		Artifact:  artifact,
		Signature: signature,
		KeyID:     s.keyID,
		SignedAt:  signedAt,
	}, nil
}

// Verify checks a detached signature against an artifact digest. Used by
// tests and by operators auditing emitted packages.
func (s *Signer) Verify(signature, digest string) error {
	var claims digestClaims
	token, err := jwt.ParseWithClaims(signature, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("signature is invalid")
	}
	if claims.Digest != digest {
		return fmt.Errorf("signature digest mismatch")
	}
	return nil
}
