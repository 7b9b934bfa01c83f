// Package service defines the interfaces shared between billwell's layers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/billwell/internal/model"
)

// RecordSource fetches the raw JSON body of one resource collection.
type RecordSource interface {
	Fetch(ctx context.Context, kind model.Kind) ([]byte, error)
}

// OverrideStore persists local invoice status overrides.
type OverrideStore interface {
	LoadOverrides(ctx context.Context) (map[string]string, error)
	ListOverrides(ctx context.Context) ([]model.StatusOverride, error)
	SaveOverride(ctx context.Context, recordID, status string) error
	ClearOverrides(ctx context.Context) error
}

// SessionStore persists the signed-in user's token.
type SessionStore interface {
	SaveSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context) (*model.Session, error)
	ClearSession(ctx context.Context) error
}

// Storage is the local database.
type Storage interface {
	OverrideStore
	SessionStore

	Migrate(ctx context.Context) error
	Close() error
}

// Authenticator signs users in against the remote API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, name, email, password string) (*model.Session, error)
	Me(ctx context.Context) (*model.User, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// WithDefaults fills unset fields.
func (o RetryOptions) WithDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	return o
}
