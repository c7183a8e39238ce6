package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/manifest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/submission"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/validation"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/storage"
)

// CreateSubmission persists a new aggregate at revision 1.
func (s *Store) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	if strings.TrimSpace(sub.ID) == "" {
		return submission.Submission{}, fmt.Errorf("submission id is required")
	}

	manifestJSON, validationJSON, err := encodeAttachments(sub)
	if err != nil {
		return submission.Submission{}, err
	}

	sub.Revision = 1
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO submissions
		   (id, region, state, revision, manifest_json, validation_json, resume_state,
		    failure_detail, artifact_digest, tracking_id, ack_pending, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Region, string(sub.State), sub.Revision, manifestJSON, validationJSON,
		string(sub.ResumeState), sub.FailureDetail, sub.ArtifactDigest, sub.TrackingID,
		boolToInt(sub.AckPending), toMillis(sub.CreatedAt), toMillis(sub.UpdatedAt),
	)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

// GetSubmission loads an aggregate by id.
func (s *Store) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, region, state, revision, manifest_json, validation_json, resume_state,
		        failure_detail, artifact_digest, tracking_id, ack_pending, created_at, updated_at
		 FROM submissions WHERE id = ?`, id)
	return scanSubmission(row)
}

// UpdateSubmission applies a transition guarded by the optimistic
// revision check. A stale expectedRevision fails with ErrStateConflict
// and must be retried from a fresh read.
func (s *Store) UpdateSubmission(ctx context.Context, sub submission.Submission, expectedRevision uint64) (submission.Submission, error) {
	manifestJSON, validationJSON, err := encodeAttachments(sub)
	if err != nil {
		return submission.Submission{}, err
	}

	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE submissions SET
		   state = ?, revision = revision + 1, manifest_json = ?, validation_json = ?,
		   resume_state = ?, failure_detail = ?, artifact_digest = ?, tracking_id = ?,
		   ack_pending = ?, updated_at = ?
		 WHERE id = ? AND revision = ?`,
		string(sub.State), manifestJSON, validationJSON, string(sub.ResumeState),
		sub.FailureDetail, sub.ArtifactDigest, sub.TrackingID, boolToInt(sub.AckPending),
		toMillis(sub.UpdatedAt), sub.ID, expectedRevision,
	)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("update submission: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return submission.Submission{}, fmt.Errorf("update submission result: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetSubmission(ctx, sub.ID); err != nil {
			return submission.Submission{}, err
		}
		return submission.Submission{}, storage.ErrStateConflict
	}

	sub.Revision = expectedRevision + 1
	return sub, nil
}

// ListSubmissionsByState returns aggregates in a given lifecycle state,
// used by the acknowledgment poller to find transmitted submissions.
func (s *Store) ListSubmissionsByState(ctx context.Context, state submission.State) ([]submission.Submission, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, region, state, revision, manifest_json, validation_json, resume_state,
		        failure_detail, artifact_digest, tracking_id, ack_pending, created_at, updated_at
		 FROM submissions WHERE state = ? ORDER BY created_at`, string(state))
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []submission.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func encodeAttachments(sub submission.Submission) (manifestJSON, validationJSON string, err error) {
	if sub.Manifest != nil {
		data, err := json.Marshal(sub.Manifest)
		if err != nil {
			return "", "", fmt.Errorf("encode manifest: %w", err)
		}
		manifestJSON = string(data)
	}
	if sub.Validation != nil {
		data, err := json.Marshal(sub.Validation)
		if err != nil {
			return "", "", fmt.Errorf("encode validation: %w", err)
		}
		validationJSON = string(data)
	}
	return manifestJSON, validationJSON, nil
}

func scanSubmission(row rowScanner) (submission.Submission, error) {
	var sub submission.Submission
	var state, resumeState, manifestJSON, validationJSON string
	var ackPending int64
	var createdAt, updatedAt int64
	err := row.Scan(&sub.ID, &sub.Region, &state, &sub.Revision, &manifestJSON, &validationJSON,
		&resumeState, &sub.FailureDetail, &sub.ArtifactDigest, &sub.TrackingID,
		&ackPending, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, fmt.Errorf("scan submission: %w", err)
	}

	if parsed, ok := submission.ParseState(state); ok {
		sub.State = parsed
	}
	if parsed, ok := submission.ParseState(resumeState); ok {
		sub.ResumeState = parsed
	}
	sub.AckPending = ackPending != 0
	sub.CreatedAt = fromMillis(createdAt)
	sub.UpdatedAt = fromMillis(updatedAt)

	if manifestJSON != "" {
		var m manifest.Manifest
		if err := json.Unmarshal([]byte(manifestJSON), &m); err != nil {
			return submission.Submission{}, fmt.Errorf("decode manifest: %w", err)
		}
		sub.Manifest = &m
	}
	if validationJSON != "" {
		var v validation.Result
		if err := json.Unmarshal([]byte(validationJSON), &v); err != nil {
			return submission.Submission{}, fmt.Errorf("decode validation: %w", err)
		}
		sub.Validation = &v
	}
	return sub, nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

var _ storage.SubmissionStore = (*Store)(nil)
