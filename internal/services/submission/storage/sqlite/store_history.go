package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/history"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/storage"
)

// AppendHistory records one immutable ledger entry, assigning the next
// per-submission sequence number inside a transaction. There is no
// update or delete path anywhere in this store.
func (s *Store) AppendHistory(ctx context.Context, entry history.Entry) (history.Entry, error) {
	if strings.TrimSpace(entry.SubmissionID) == "" {
		return history.Entry{}, fmt.Errorf("submission id is required")
	}
	if _, ok := history.ParseEvent(string(entry.Event)); !ok {
		return history.Entry{}, fmt.Errorf("unknown history event %q", entry.Event)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Millisecond)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return history.Entry{}, fmt.Errorf("begin append history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxSeq uint64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM submission_history WHERE submission_id = ?`,
		entry.SubmissionID,
	).Scan(&maxSeq)
	if err != nil {
		return history.Entry{}, fmt.Errorf("next history seq: %w", err)
	}
	entry.Seq = maxSeq + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO submission_history (submission_id, seq, event, timestamp, detail)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.SubmissionID, entry.Seq, string(entry.Event), toMillis(entry.Timestamp), entry.Detail,
	)
	if err != nil {
		return history.Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return history.Entry{}, fmt.Errorf("commit history entry: %w", err)
	}
	return entry, nil
}

// ListHistory returns a submission's ledger ordered by timestamp then
// sequence.
func (s *Store) ListHistory(ctx context.Context, submissionID string) ([]history.Entry, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT submission_id, seq, event, timestamp, detail
		 FROM submission_history WHERE submission_id = ?
		 ORDER BY timestamp, seq`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var entry history.Entry
		var event string
		var timestamp int64
		if err := rows.Scan(&entry.SubmissionID, &entry.Seq, &event, &timestamp, &entry.Detail); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if parsed, ok := history.ParseEvent(event); ok {
			entry.Event = parsed
		}
		entry.Timestamp = fromMillis(timestamp)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

var _ storage.HistoryStore = (*Store)(nil)
