package overlay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/normalize"
)

type memoryStore struct {
	overrides map[string]string
	deleted   []string
	loadErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{overrides: map[string]string{}}
}

func (m *memoryStore) LoadOverrides(context.Context) (map[string]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[string]string, len(m.overrides))
	for k, v := range m.overrides {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) ListOverrides(context.Context) ([]model.StatusOverride, error) {
	var out []model.StatusOverride
	for k, v := range m.overrides {
		out = append(out, model.StatusOverride{RecordID: k, Status: v, UpdatedAt: time.Now()})
	}
	return out, nil
}

func (m *memoryStore) SaveOverride(_ context.Context, id, status string) error {
	m.overrides[id] = status
	return nil
}

func (m *memoryStore) ClearOverrides(context.Context) error {
	m.overrides = map[string]string{}
	return nil
}

func (m *memoryStore) DeleteOverride(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.overrides, id)
	return nil
}

type fakeRemote struct {
	err   error
	calls []string
}

func (f *fakeRemote) UpdateInvoiceStatus(_ context.Context, id, status string) error {
	f.calls = append(f.calls, id+"="+status)
	return f.err
}

func TestApplyOverrides_DoesNotMutateInput(t *testing.T) {
	records := []model.Record{
		{ID: "5", Status: "draft"},
		{ID: "6", Status: "pending"},
	}
	got := ApplyOverrides(records, map[string]string{"5": "paid", "99": "paid"})

	assert.Equal(t, "paid", got[0].Status)
	assert.Equal(t, "pending", got[1].Status)
	assert.Equal(t, "draft", records[0].Status)

	same := ApplyOverrides(records, nil)
	assert.Equal(t, records, same)
}

func TestOverlay_SurvivesRefetch(t *testing.T) {
	ctx := context.Background()
	o := New(newMemoryStore())
	server := []byte(`{"invoices":[{"_id":"5","status":"draft","total":100}]}`)

	require.NoError(t, o.RecordOverride(ctx, "5", "paid"))

	for i := 0; i < 2; i++ {
		fetched := normalize.Normalize(server, model.KindInvoices)
		require.Equal(t, "draft", fetched[0].Status)

		applied, err := o.Apply(ctx, fetched)
		require.NoError(t, err)
		assert.Equal(t, "paid", applied[0].Status, "fetch %d", i+1)
	}

	require.NoError(t, o.Clear(ctx))
	applied, err := o.Apply(ctx, normalize.Normalize(server, model.KindInvoices))
	require.NoError(t, err)
	assert.Equal(t, "draft", applied[0].Status)
}

func TestOverlay_ApplyLoadError(t *testing.T) {
	store := newMemoryStore()
	store.loadErr = errors.New("disk gone")
	_, err := New(store).Apply(context.Background(), nil)
	assert.ErrorContains(t, err, "disk gone")
}

func TestLocalUpdater_NeverCallsRemote(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	remote := &fakeRemote{}

	u, err := NewStatusUpdater("", New(store), remote)
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, u.Mode())

	require.NoError(t, u.UpdateStatus(ctx, "5", " paid "))
	assert.Equal(t, "paid", store.overrides["5"])
	assert.Empty(t, remote.calls)
}

func TestRemoteUpdater(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.overrides["5"] = "paid"
	remote := &fakeRemote{}

	u, err := NewStatusUpdater("REMOTE", New(store), remote)
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, u.Mode())

	require.NoError(t, u.UpdateStatus(ctx, "5", "settled"))
	assert.Equal(t, []string{"5=settled"}, remote.calls)
	assert.Equal(t, []string{"5"}, store.deleted)

	remote.err = &common.APIError{Method: "PATCH", Path: "/invoices/6/status", StatusCode: 500}
	err = u.UpdateStatus(ctx, "6", "paid")
	require.ErrorIs(t, err, common.ErrRemoteAPI)
	assert.Equal(t, []string{"5"}, store.deleted)
}

func TestNewStatusUpdater_Errors(t *testing.T) {
	o := New(newMemoryStore())

	_, err := NewStatusUpdater("remote", o, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewStatusUpdater("carrier-pigeon", o, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
