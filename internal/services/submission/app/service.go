// Package app orchestrates the submission pipeline: it coordinates the
// version store, the profile registry, the manifest builder, the
// validation engine, and the signing/transmission gateway, and owns
// every persisted lifecycle transition.
package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/id"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/docversion"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/history"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/manifest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/profile"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/submission"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/validation"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/storage"
)

// Service wires the submission engine together. All lifecycle writes go
// through transition, which enforces the state table, the optimistic
// revision check, and the one-history-entry-per-transition rule.
type Service struct {
	store       storage.Store
	profiles    *profile.Registry
	signer      gateway.Signer
	transmitter gateway.Transmitter
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService creates the submission service.
func NewService(store storage.Store, profiles *profile.Registry, signer gateway.Signer, transmitter gateway.Transmitter) *Service {
	return &Service{
		store:       store,
		profiles:    profiles,
		signer:      signer,
		transmitter: transmitter,
		tracer:      otel.Tracer("submission"),
		now:         time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateSubmission opens a draft submission for a region. The region must
// have a registered rule profile.
func (s *Service) CreateSubmission(ctx context.Context, region string) (submission.Submission, error) {
	if _, err := s.profiles.Profile(region); err != nil {
		return submission.Submission{}, err
	}

	newID, err := id.NewID()
	if err != nil {
		return submission.Submission{}, fmt.Errorf("new submission id: %w", err)
	}
	sub, err := submission.New(newID, region, s.now())
	if err != nil {
		return submission.Submission{}, err
	}

	created, err := s.store.CreateSubmission(ctx, sub)
	if err != nil {
		return submission.Submission{}, err
	}
	if err := s.appendHistory(ctx, created.ID, history.EventCreated, "region="+created.Region); err != nil {
		return submission.Submission{}, err
	}
	return created, nil
}

// GetSubmission loads a submission aggregate.
func (s *Service) GetSubmission(ctx context.Context, submissionID string) (submission.Submission, error) {
	return s.store.GetSubmission(ctx, submissionID)
}

// History lists the audit ledger for a submission.
func (s *Service) History(ctx context.Context, submissionID string) ([]history.Entry, error) {
	if _, err := s.store.GetSubmission(ctx, submissionID); err != nil {
		return nil, err
	}
	return s.store.ListHistory(ctx, submissionID)
}

// Profile returns the rule profile registered for a region.
func (s *Service) Profile(region string) (profile.Profile, error) {
	return s.profiles.Profile(region)
}

// BuildManifest freezes document selections into a backbone manifest.
// Rebuilding is allowed from any pre-transmission state, including
// validated_blocked, and discards the previous validation result.
func (s *Service) BuildManifest(ctx context.Context, submissionID string, selections []manifest.Selection) (submission.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "submission.BuildManifest")
	defer span.End()

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return submission.Submission{}, err
	}
	prof, err := s.profiles.Profile(sub.Region)
	if err != nil {
		return submission.Submission{}, err
	}

	m, err := manifest.Build(ctx, sub.ID, sub.Region, prof.MandatorySections, selections, s.store, s.now())
	if err != nil {
		return submission.Submission{}, err
	}

	sub.Manifest = &m
	sub.Validation = nil
	sub.ResumeState = submission.StateUnspecified
	sub.FailureDetail = ""
	detail := fmt.Sprintf("fingerprint=%s incomplete=%t", m.Fingerprint(), m.Incomplete)
	return s.transition(ctx, sub, submission.StateManifestBuilt, history.EventManifestBuilt, detail)
}

// Validate evaluates the region's rule profile against the frozen
// manifest and moves the submission to validated_clear or
// validated_blocked. Blocking output is a result state, never an error.
func (s *Service) Validate(ctx context.Context, submissionID string) (submission.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "submission.Validate")
	defer span.End()

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return submission.Submission{}, err
	}
	if sub.Manifest == nil {
		return submission.Submission{}, apperrors.WithMetadata(apperrors.CodeSubmissionInvalidTransition,
			"submission has no manifest to validate", map[string]string{"state": string(sub.State)})
	}
	prof, err := s.profiles.Profile(sub.Region)
	if err != nil {
		return submission.Submission{}, err
	}

	vctx, err := s.loadValidationContext(ctx, *sub.Manifest)
	if err != nil {
		return submission.Submission{}, err
	}
	result := validation.Validate(vctx, prof, s.now())

	target := submission.StateValidatedClear
	if result.HasBlockingIssues {
		target = submission.StateValidatedBlocked
	}
	sub.Validation = &result
	detail := fmt.Sprintf("score=%d issues=%d blocking=%d", result.CompletenessScore, len(result.Issues), result.BlockingCount())
	return s.transition(ctx, sub, target, history.EventValidated, detail)
}

// Abandon gives up a submission before validation work is committed.
// Allowed from draft and manifest_built only.
func (s *Service) Abandon(ctx context.Context, submissionID string) (submission.Submission, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return submission.Submission{}, err
	}
	if !sub.Abandonable() {
		return submission.Submission{}, apperrors.WithMetadata(apperrors.CodeSubmissionNotAbandonable,
			"submission can no longer be abandoned", map[string]string{"state": string(sub.State)})
	}
	return s.transition(ctx, sub, submission.StateAbandoned, history.EventAbandoned, "")
}

// loadValidationContext resolves every pinned version and its source
// document for rule evaluation.
func (s *Service) loadValidationContext(ctx context.Context, m manifest.Manifest) (validation.Context, error) {
	vctx := validation.Context{
		Manifest:  m,
		Documents: make(map[string]document.Document),
		Versions:  make(map[string]docversion.DocumentVersion),
	}
	for _, leaf := range m.Leaves() {
		version, err := s.store.GetVersion(ctx, leaf.VersionID)
		if err != nil {
			return validation.Context{}, err
		}
		vctx.Versions[leaf.VersionID] = version

		if _, ok := vctx.Documents[leaf.DocumentID]; ok {
			continue
		}
		doc, err := s.store.GetDocument(ctx, leaf.DocumentID)
		if err != nil {
			return validation.Context{}, err
		}
		vctx.Documents[leaf.DocumentID] = doc
	}
	return vctx, nil
}

// transition persists one lifecycle move and appends its ledger entry.
// The state table gates the move; the stored revision gates concurrency.
func (s *Service) transition(ctx context.Context, sub submission.Submission, to submission.State, event history.Event, detail string) (submission.Submission, error) {
	if !submission.IsTransitionAllowed(sub.State, to) {
		return submission.Submission{}, apperrors.WithMetadata(apperrors.CodeSubmissionInvalidTransition,
			"submission state transition is not allowed", map[string]string{
				"from": string(sub.State),
				"to":   string(to),
			})
	}

	expected := sub.Revision
	sub.State = to
	sub.UpdatedAt = s.now().UTC()
	updated, err := s.store.UpdateSubmission(ctx, sub, expected)
	if err != nil {
		return submission.Submission{}, err
	}
	if err := s.appendHistory(ctx, updated.ID, event, detail); err != nil {
		return submission.Submission{}, err
	}
	return updated, nil
}

func (s *Service) appendHistory(ctx context.Context, submissionID string, event history.Event, detail string) error {
	_, err := s.store.AppendHistory(ctx, history.Entry{
		SubmissionID: submissionID,
		Event:        event,
		Timestamp:    s.now().UTC(),
		Detail:       detail,
	})
	return err
}
