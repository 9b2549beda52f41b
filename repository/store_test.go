package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/utils"
)

// memoryBackend keeps the last saved snapshot and can be told to fail.
type memoryBackend struct {
	records []models.ProjectRecord
	stored  bool
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryBackend) Name() string { return "memory" }

func (m *memoryBackend) Load(context.Context) ([]models.ProjectRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if !m.stored {
		return nil, ErrNoData
	}
	return cloneRecords(m.records), nil
}

func (m *memoryBackend) Save(_ context.Context, records []models.ProjectRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.stored = true
	m.records = cloneRecords(records)
	return nil
}

func (m *memoryBackend) Close() error { return nil }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T, opts StoreOptions) (*Store, *memoryBackend, *fakeClock) {
	t.Helper()
	backend := &memoryBackend{}
	clock := &fakeClock{t: time.Date(2025, 6, 4, 9, 30, 0, 0, time.UTC)}
	if opts.Now == nil {
		opts.Now = clock.Now
	}
	store := NewStore(backend, opts)
	store.Load(context.Background())
	return store, backend, clock
}

func TestStore_AddThenLoad(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, StoreOptions{})

	before := len(store.Load(ctx))
	rec, err := store.Add(ctx, models.ProjectRecord{
		Title:  "Valley Water Monitoring Grant",
		Status: models.StatusWriting,
		Value:  50000,
	})
	require.NoError(t, err)
	require.Len(t, rec.ID, 12)
	require.Equal(t, rec.CreatedDate, rec.LastUpdated)

	records := store.Load(ctx)
	require.Len(t, records, before+1)
	require.Equal(t, rec, records[len(records)-1])
}

func TestStore_AddAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, StoreOptions{})

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		rec, err := store.Add(ctx, models.ProjectRecord{Title: fmt.Sprintf("Bid %d", i)})
		require.NoError(t, err)
		require.Regexp(t, `^[A-Z0-9]{12}$`, rec.ID)
		require.False(t, seen[rec.ID])
		seen[rec.ID] = true
	}
}

func TestStore_AddRegeneratesCollidingID(t *testing.T) {
	ctx := context.Background()
	ids := []string{"AAAAAAAAAAAA", "AAAAAAAAAAAA", "BBBBBBBBBBBB"}
	next := 0
	store, _, _ := newTestStore(t, StoreOptions{NewID: func() (string, error) {
		id := ids[next]
		next++
		return id, nil
	}})

	first, err := store.Add(ctx, models.ProjectRecord{Title: "First"})
	require.NoError(t, err)
	second, err := store.Add(ctx, models.ProjectRecord{Title: "Second"})
	require.NoError(t, err)

	require.Equal(t, "AAAAAAAAAAAA", first.ID)
	require.Equal(t, "BBBBBBBBBBBB", second.ID)
}

func TestStore_AddDefaults(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t, StoreOptions{})

	rec, err := store.Add(ctx, models.ProjectRecord{Title: "City Contract"})
	require.NoError(t, err)
	require.Equal(t, models.StatusWriting, rec.Status)
	require.Equal(t, clock.Now(), rec.CreatedDate)
	require.Zero(t, rec.Value)

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rec, err = store.Add(ctx, models.ProjectRecord{Title: "Imported", CreatedDate: created})
	require.NoError(t, err)
	require.Equal(t, created, rec.CreatedDate)
	require.Equal(t, created, rec.LastUpdated)
}

func TestStore_AddDefaultStatusFallsBackToFirstConfigured(t *testing.T) {
	store, _, _ := newTestStore(t, StoreOptions{Statuses: []models.Status{"Open", "Won"}})

	rec, err := store.Add(context.Background(), models.ProjectRecord{Title: "Bid"})
	require.NoError(t, err)
	require.Equal(t, models.Status("Open"), rec.Status)
}

func TestStore_AddValidation(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore(t, StoreOptions{RequireClient: true})

	cases := []struct {
		name  string
		rec   models.ProjectRecord
		field string
	}{
		{"empty title", models.ProjectRecord{Client: "County"}, "title"},
		{"blank title", models.ProjectRecord{Title: "   ", Client: "County"}, "title"},
		{"missing client", models.ProjectRecord{Title: "Grant"}, "client"},
		{"unknown status", models.ProjectRecord{Title: "Grant", Client: "County", Status: "Lost"}, "status"},
		{"negative value", models.ProjectRecord{Title: "Grant", Client: "County", Value: -1}, "value"},
		{"bad priority", models.ProjectRecord{Title: "Grant", Client: "County", Priority: "Urgent"}, "priority"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Add(ctx, tc.rec)
			var ve *utils.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}
	require.Empty(t, store.Records())
	require.Zero(t, backend.saves)
}

func TestStore_UpdateStatusChangesOnlyStatusAndTimestamp(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(t, StoreOptions{})

	deadline := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	orig, err := store.Add(ctx, models.ProjectRecord{
		Title:     "Valley Grant",
		Client:    "Valley Water District",
		Notes:     "needs budget table",
		DriveLink: "https://drive.example.com/doc",
		Deadline:  &deadline,
		Value:     1200.5,
		Priority:  models.PriorityHigh,
	})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	updated, err := store.UpdateStatus(ctx, orig.ID, models.StatusSubmitted)
	require.NoError(t, err)

	require.Equal(t, models.StatusSubmitted, updated.Status)
	require.Equal(t, clock.Now(), updated.LastUpdated)

	expected := orig
	expected.Status = models.StatusSubmitted
	expected.LastUpdated = updated.LastUpdated
	require.Equal(t, expected, updated)
}

func TestStore_UpdatePatch(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore(t, StoreOptions{})

	deadline := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	orig, err := store.Add(ctx, models.ProjectRecord{Title: "Grant", Deadline: &deadline})
	require.NoError(t, err)

	title := "Renamed Grant"
	value := 75000.0
	updated, err := store.Update(ctx, orig.ID, models.ProjectPatch{Title: &title, Value: &value, ClearDeadline: true})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)
	require.Equal(t, value, updated.Value)
	require.Nil(t, updated.Deadline)
	require.Equal(t, orig.ID, updated.ID)
	require.Equal(t, orig.CreatedDate, updated.CreatedDate)
	require.Equal(t, updated, backend.records[0])

	empty := ""
	_, err = store.Update(ctx, orig.ID, models.ProjectPatch{Title: &empty})
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)

	got, err := store.Get(orig.ID)
	require.NoError(t, err)
	require.Equal(t, title, got.Title)
}

func TestStore_UpdateNotFound(t *testing.T) {
	store, _, _ := newTestStore(t, StoreOptions{})

	_, err := store.UpdateStatus(context.Background(), "MISSING00000", models.StatusDraft)
	require.ErrorIs(t, err, utils.ErrNotFound)

	_, err = store.Get("MISSING00000")
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestStore_LastUpdatedNeverBeforeCreated(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, StoreOptions{})

	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rec, err := store.Add(ctx, models.ProjectRecord{Title: "Future", CreatedDate: future})
	require.NoError(t, err)

	updated, err := store.UpdateStatus(ctx, rec.ID, models.StatusDraft)
	require.NoError(t, err)
	require.False(t, updated.LastUpdated.Before(updated.CreatedDate))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore(t, StoreOptions{})

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		rec, err := store.Add(ctx, models.ProjectRecord{Title: title})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	before := store.Records()
	saves := backend.saves

	deleted, err := store.Delete(ctx, "NOTPRESENT00")
	require.NoError(t, err)
	require.False(t, deleted)
	require.Equal(t, before, store.Records())
	require.Equal(t, saves, backend.saves)

	deleted, err = store.Delete(ctx, ids[1])
	require.NoError(t, err)
	require.True(t, deleted)

	after := store.Load(ctx)
	require.Len(t, after, 2)
	require.Equal(t, ids[0], after[0].ID)
	require.Equal(t, ids[2], after[1].ID)
}

func TestStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore(t, StoreOptions{})

	_, err := store.Add(ctx, models.ProjectRecord{Title: "Old"})
	require.NoError(t, err)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	replacement := []models.ProjectRecord{
		{ID: "X1", Title: "One", Status: models.StatusDraft, CreatedDate: ts, LastUpdated: ts},
		{ID: "X2", Title: "", Status: "Legacy", CreatedDate: ts, LastUpdated: ts},
	}
	require.NoError(t, store.ReplaceAll(ctx, replacement))
	require.Equal(t, replacement, store.Records())
	require.Equal(t, replacement, backend.records)
}

func TestStore_LoadSoftFails(t *testing.T) {
	backend := &memoryBackend{loadErr: errors.New("disk on fire")}
	store := NewStore(backend, StoreOptions{})

	records := store.Load(context.Background())
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestStore_SaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore(t, StoreOptions{})
	backend.saveErr = errors.New("read-only file system")

	rec, err := store.Add(ctx, models.ProjectRecord{Title: "Kept in memory"})
	require.Error(t, err)
	require.True(t, utils.IsPersistenceError(err))
	require.NotEmpty(t, rec.ID)
	require.Len(t, store.Records(), 1)
	assert.True(t, strings.Contains(err.Error(), "read-only"))

	_, err = store.Delete(ctx, rec.ID)
	require.True(t, utils.IsPersistenceError(err))
}

func TestStore_SnapshotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, StoreOptions{})

	deadline := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.Add(ctx, models.ProjectRecord{Title: "Grant", Deadline: &deadline})
	require.NoError(t, err)

	snap := store.Records()
	snap[0].Title = "mutated"
	*snap[0].Deadline = deadline.AddDate(1, 0, 0)

	fresh := store.Records()
	require.Equal(t, "Grant", fresh[0].Title)
	require.Equal(t, deadline, *fresh[0].Deadline)
}

func TestGenerateID(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		require.NoError(t, err)
		require.Regexp(t, `^[A-Z0-9]{12}$`, id)
	}
}

func TestStore_FillTimestamps(t *testing.T) {
	store, _, clock := newTestStore(t, StoreOptions{})
	created := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	var rec models.ProjectRecord
	store.FillTimestamps(&rec)
	require.Equal(t, clock.t, rec.CreatedDate)
	require.Equal(t, clock.t, rec.LastUpdated)

	rec = models.ProjectRecord{CreatedDate: created}
	store.FillTimestamps(&rec)
	require.Equal(t, created, rec.LastUpdated)

	rec = models.ProjectRecord{CreatedDate: created, LastUpdated: created.Add(-time.Hour)}
	store.FillTimestamps(&rec)
	require.Equal(t, created, rec.LastUpdated)
}

func TestStore_ValidateDoesNotMutate(t *testing.T) {
	store, backend, _ := newTestStore(t, StoreOptions{})

	require.NoError(t, store.Validate(models.ProjectRecord{Title: "ok", Status: store.DefaultStatus()}))

	var ve *utils.ValidationError
	require.True(t, errors.As(store.Validate(models.ProjectRecord{Title: "x", Status: "Nonsense"}), &ve))
	require.Equal(t, "status", ve.Field)
	require.True(t, errors.As(store.Validate(models.ProjectRecord{Title: "x", Status: models.StatusDraft, Value: -1}), &ve))
	require.Equal(t, "value", ve.Field)

	require.Empty(t, store.Records())
	require.Zero(t, backend.saves)
}
