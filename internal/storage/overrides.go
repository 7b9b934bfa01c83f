package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/billwell/internal/model"
)

// LoadOverrides returns every stored status keyed by record ID.
func (s *SQLiteStorage) LoadOverrides(ctx context.Context) (map[string]string, error) {
	list, err := s.ListOverrides(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, o := range list {
		out[o.RecordID] = o.Status
	}
	return out, nil
}

// ListOverrides returns stored overrides, most recently updated first.
func (s *SQLiteStorage) ListOverrides(ctx context.Context) ([]model.StatusOverride, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, status, updated_at
		FROM status_overrides
		ORDER BY updated_at DESC, record_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query status overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.StatusOverride
	for rows.Next() {
		var o model.StatusOverride
		if err := rows.Scan(&o.RecordID, &o.Status, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status override: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status overrides: %w", err)
	}
	return out, nil
}

// SaveOverride upserts the status for recordID.
func (s *SQLiteStorage) SaveOverride(ctx context.Context, recordID, status string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(recordID, "recordID"); err != nil {
		return err
	}
	if err := validateString(status, "status"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_overrides (record_id, status, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at`,
		recordID, strings.TrimSpace(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save status override: %w", err)
	}
	return nil
}

// DeleteOverride removes the override for recordID if there is one.
func (s *SQLiteStorage) DeleteOverride(ctx context.Context, recordID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(recordID, "recordID"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM status_overrides WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("failed to delete status override: %w", err)
	}
	return nil
}

// ClearOverrides removes every stored override.
func (s *SQLiteStorage) ClearOverrides(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM status_overrides`); err != nil {
		return fmt.Errorf("failed to clear status overrides: %w", err)
	}
	return nil
}
