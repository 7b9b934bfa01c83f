package overlay

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/service"
)

// Status update modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// StatusUpdater changes an invoice's status.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
	// Mode names the implementation, ModeLocal or ModeRemote.
	Mode() string
}

// RemoteStatusClient is the part of the API client RemoteUpdater needs.
type RemoteStatusClient interface {
	UpdateInvoiceStatus(ctx context.Context, id, status string) error
}

// LocalUpdater records statuses in the overlay and never calls the API.
type LocalUpdater struct {
	overlay *Overlay
}

// NewLocalUpdater creates a local-only updater.
func NewLocalUpdater(o *Overlay) *LocalUpdater {
	return &LocalUpdater{overlay: o}
}

// UpdateStatus records the override.
func (u *LocalUpdater) UpdateStatus(ctx context.Context, id, status string) error {
	return u.overlay.RecordOverride(ctx, id, status)
}

// Mode returns ModeLocal.
func (u *LocalUpdater) Mode() string { return ModeLocal }

// RemoteUpdater sends the status to the API. A successful update drops any
// local override for the record so the server value shows through.
type RemoteUpdater struct {
	client  RemoteStatusClient
	cleaner overrideDeleter
}

type overrideDeleter interface {
	DeleteOverride(ctx context.Context, recordID string) error
}

// NewRemoteUpdater creates an updater that PATCHes the API. store may be nil.
func NewRemoteUpdater(client RemoteStatusClient, store service.OverrideStore) *RemoteUpdater {
	u := &RemoteUpdater{client: client}
	if d, ok := store.(overrideDeleter); ok {
		u.cleaner = d
	}
	return u
}

// UpdateStatus calls the remote endpoint.
func (u *RemoteUpdater) UpdateStatus(ctx context.Context, id, status string) error {
	if err := u.client.UpdateInvoiceStatus(ctx, id, strings.TrimSpace(status)); err != nil {
		return err
	}
	if u.cleaner != nil {
		if err := u.cleaner.DeleteOverride(ctx, id); err != nil {
			common.LogWarn(ctx, "failed to drop local override after remote update", common.Fields{
				"id":    id,
				"error": err.Error(),
			})
		}
	}
	return nil
}

// Mode returns ModeRemote.
func (u *RemoteUpdater) Mode() string { return ModeRemote }

// NewStatusUpdater picks the implementation for mode. An empty mode means
// ModeLocal.
func NewStatusUpdater(mode string, o *Overlay, client RemoteStatusClient) (StatusUpdater, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeLocal:
		return NewLocalUpdater(o), nil
	case ModeRemote:
		if client == nil {
			return nil, fmt.Errorf("remote status updates need an api client: %w", common.ErrMissingConfig)
		}
		return NewRemoteUpdater(client, o.store), nil
	default:
		return nil, fmt.Errorf("unknown status mode %q: %w", mode, common.ErrInvalidConfig)
	}
}
