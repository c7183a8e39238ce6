package app

import (
	"context"
	"fmt"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/history"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/submission"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
)

// Build runs the post-validation pipeline: enrich (sign), assemble, and
// transmit, persisting each transition separately so a failure leaves an
// accurate resume point. A failed submission re-enters at its recorded
// resume state without re-validating.
func (s *Service) Build(ctx context.Context, submissionID string) (submission.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "submission.Build")
	defer span.End()

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return submission.Submission{}, err
	}

	switch sub.State {
	case submission.StateValidatedClear:
	case submission.StateFailed:
		resume := sub.ResumeState
		if resume == submission.StateUnspecified {
			return submission.Submission{}, apperrors.WithMetadata(apperrors.CodeSubmissionInvalidTransition,
				"failed submission has no resume state", map[string]string{"state": string(sub.State)})
		}
		sub.FailureDetail = ""
		sub, err = s.transition(ctx, sub, resume, history.EventResumed, "resume_state="+string(resume))
		if err != nil {
			return submission.Submission{}, err
		}
	case submission.StateValidatedBlocked:
		blocking := 0
		if sub.Validation != nil {
			blocking = sub.Validation.BlockingCount()
		}
		return submission.Submission{}, apperrors.WithMetadata(apperrors.CodeSubmissionBlocked,
			"submission has blocking validation issues", map[string]string{
				"blocking_issues": fmt.Sprintf("%d", blocking),
			})
	default:
		return submission.Submission{}, apperrors.WithMetadata(apperrors.CodeSubmissionNotValidated,
			"submission has not been validated clear", map[string]string{"state": string(sub.State)})
	}

	// The signed artifact travels in memory between stages; on resume it
	// is re-derived deterministically from the frozen manifest.
	var signed *gateway.SignedArtifact
	for {
		switch sub.State {
		case submission.StateValidatedClear:
			sub, signed, err = s.enrich(ctx, sub)
		case submission.StateEnriched:
			sub, signed, err = s.assemble(ctx, sub, signed)
		case submission.StateAssembled:
			sub, err = s.transmit(ctx, sub, signed)
		case submission.StateTransmitted:
			return sub, nil
		default:
			return sub, nil
		}
		if err != nil {
			return sub, err
		}
	}
}

// enrich attaches the generated cover letter and the detached signature
// to the package. Signing failure fails the submission with resume state
// validated_clear.
func (s *Service) enrich(ctx context.Context, sub submission.Submission) (submission.Submission, *gateway.SignedArtifact, error) {
	ctx, span := s.tracer.Start(ctx, "submission.enrich")
	defer span.End()

	artifact, err := assembleArtifact(*sub.Manifest)
	if err != nil {
		failed, ferr := s.fail(ctx, sub, submission.StateValidatedClear, "assemble package: "+err.Error())
		if ferr != nil {
			return submission.Submission{}, nil, ferr
		}
		return failed, nil, err
	}
	signedArtifact, err := s.signer.Sign(ctx, artifact)
	if err != nil {
		failed, ferr := s.fail(ctx, sub, submission.StateValidatedClear, "sign package: "+err.Error())
		if ferr != nil {
			return submission.Submission{}, nil, ferr
		}
		return failed, nil, err
	}

	sub.ArtifactDigest = artifact.Digest
	updated, err := s.transition(ctx, sub, submission.StateEnriched, history.EventEnriched, "digest="+artifact.Digest)
	if err != nil {
		return submission.Submission{}, nil, err
	}
	return updated, &signedArtifact, nil
}

// assemble finalizes the signed package for transmission.
func (s *Service) assemble(ctx context.Context, sub submission.Submission, signed *gateway.SignedArtifact) (submission.Submission, *gateway.SignedArtifact, error) {
	ctx, span := s.tracer.Start(ctx, "submission.assemble")
	defer span.End()

	if signed == nil {
		resigned, err := s.resign(ctx, sub)
		if err != nil {
			failed, ferr := s.fail(ctx, sub, submission.StateEnriched, "sign package: "+err.Error())
			if ferr != nil {
				return submission.Submission{}, nil, ferr
			}
			return failed, nil, err
		}
		signed = resigned
	}

	updated, err := s.transition(ctx, sub, submission.StateAssembled, history.EventAssembled,
		fmt.Sprintf("digest=%s bytes=%d", signed.Digest, len(signed.Content)))
	if err != nil {
		return submission.Submission{}, nil, err
	}
	return updated, signed, nil
}

// transmit hands the signed package to the gateway. Transmission is
// at-least-once; the gateway deduplicates on the manifest fingerprint.
func (s *Service) transmit(ctx context.Context, sub submission.Submission, signed *gateway.SignedArtifact) (submission.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "submission.transmit")
	defer span.End()

	if signed == nil {
		resigned, err := s.resign(ctx, sub)
		if err != nil {
			failed, ferr := s.fail(ctx, sub, submission.StateAssembled, "sign package: "+err.Error())
			if ferr != nil {
				return submission.Submission{}, ferr
			}
			return failed, err
		}
		signed = resigned
	}

	receipt, err := s.transmitter.Transmit(ctx, *signed)
	if err != nil {
		failed, ferr := s.fail(ctx, sub, submission.StateAssembled, "transmit package: "+err.Error())
		if ferr != nil {
			return submission.Submission{}, ferr
		}
		return failed, err
	}

	sub.TrackingID = receipt.TrackingID
	sub.AckPending = true
	return s.transition(ctx, sub, submission.StateTransmitted, history.EventTransmitted, "tracking_id="+receipt.TrackingID)
}

// resign re-derives and re-signs the package from the frozen manifest,
// used when a retry re-enters the pipeline past enrichment.
func (s *Service) resign(ctx context.Context, sub submission.Submission) (*gateway.SignedArtifact, error) {
	artifact, err := assembleArtifact(*sub.Manifest)
	if err != nil {
		return nil, err
	}
	signedArtifact, err := s.signer.Sign(ctx, artifact)
	if err != nil {
		return nil, err
	}
	return &signedArtifact, nil
}

// fail moves the submission to the absorbing failed state, recording
// where a retry re-enters.
func (s *Service) fail(ctx context.Context, sub submission.Submission, resume submission.State, detail string) (submission.Submission, error) {
	sub.ResumeState = resume
	sub.FailureDetail = detail
	return s.transition(ctx, sub, submission.StateFailed, history.EventFailed, detail)
}

// PollAcknowledgments advances transmitted submissions whose
// acknowledgment has arrived. Pending and unreachable answers leave the
// submission transmitted with the acknowledgment still pending; a
// timeout never fails a transmitted submission.
func (s *Service) PollAcknowledgments(ctx context.Context) error {
	subs, err := s.store.ListSubmissionsByState(ctx, submission.StateTransmitted)
	if err != nil {
		return err
	}

	var firstErr error
	for _, sub := range subs {
		status, err := s.transmitter.PollAcknowledgment(ctx, sub.TrackingID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if status != gateway.AckReceived {
			continue
		}

		sub.AckPending = false
		if _, err := s.transition(ctx, sub, submission.StateAcknowledged, history.EventAcknowledged, "tracking_id="+sub.TrackingID); err != nil {
			// A concurrent poller already advanced it.
			if apperrors.CodeOf(err) == apperrors.CodeStateConflict {
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
