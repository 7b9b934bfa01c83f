package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
)

// SaveSession stores session, replacing any previous one.
func (s *SQLiteStorage) SaveSession(ctx context.Context, session model.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSession(session); err != nil {
		return err
	}

	savedAt := session.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	var expires sql.NullTime
	if !session.ExpiresAt.IsZero() {
		expires = sql.NullTime{Time: session.ExpiresAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, email, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			email = excluded.email,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		session.Token, session.Email, expires, savedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the stored session or common.ErrNoSession.
func (s *SQLiteStorage) GetSession(ctx context.Context) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		session model.Session
		email   sql.NullString
		expires sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT token, email, expires_at, saved_at
		FROM sessions WHERE id = 1`).Scan(&session.Token, &email, &expires, &session.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.Email = email.String
	if expires.Valid {
		session.ExpiresAt = expires.Time
	}
	return &session, nil
}

// ClearSession forgets the stored session.
func (s *SQLiteStorage) ClearSession(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
