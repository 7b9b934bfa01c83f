// Package storage persists billwell's local state in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/billwell/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidToken = errors.New("invalid session token")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSession ensures a session carries a usable token.
func validateSession(session model.Session) error {
	token := strings.TrimSpace(session.Token)
	if token == "" {
		return fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return fmt.Errorf("%w: contains whitespace", ErrInvalidToken)
	}
	return nil
}
