// Package overlay patches invoice statuses locally.
//
// Statuses recorded here live only on this machine and are merged onto every
// fetched record list. The remote status endpoint is bypassed unless the
// remote StatusUpdater is selected, so callers that change a status go
// through StatusUpdater and never need to know which one is active.
package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/service"
)

// ApplyOverrides returns a copy of records with every overridden status
// replaced. records itself is never modified.
func ApplyOverrides(records []model.Record, overrides map[string]string) []model.Record {
	out := make([]model.Record, len(records))
	copy(out, records)
	if len(overrides) == 0 {
		return out
	}
	for i := range out {
		if status, ok := overrides[out[i].ID]; ok {
			out[i].Status = status
		}
	}
	return out
}

// Overlay binds ApplyOverrides to a persistent store.
type Overlay struct {
	store service.OverrideStore
}

// New creates an overlay backed by store.
func New(store service.OverrideStore) *Overlay {
	return &Overlay{store: store}
}

// Apply loads the stored overrides and merges them onto records.
func (o *Overlay) Apply(ctx context.Context, records []model.Record) ([]model.Record, error) {
	overrides, err := o.store.LoadOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load status overrides: %w", err)
	}
	return ApplyOverrides(records, overrides), nil
}

// RecordOverride stores status for id. It is persisted before returning.
func (o *Overlay) RecordOverride(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	if err := o.store.SaveOverride(ctx, id, status); err != nil {
		return fmt.Errorf("failed to record status override: %w", err)
	}
	slog.Debug("recorded local status override", "id", id, "status", status)
	return nil
}

// List returns the stored overrides.
func (o *Overlay) List(ctx context.Context) ([]model.StatusOverride, error) {
	return o.store.ListOverrides(ctx)
}

// Clear forgets every override.
func (o *Overlay) Clear(ctx context.Context) error {
	return o.store.ClearOverrides(ctx)
}
