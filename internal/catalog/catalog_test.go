package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/evolve-charging/internal/model"
	"github.com/mmeshcher/evolve-charging/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	c := New(repository.NewStationMemory(), nil)
	require.NoError(t, c.Seed(context.Background()))
	return c
}

func TestCreateStation_Defaults(t *testing.T) {
	c := New(repository.NewStationMemory(), nil)

	s, err := c.CreateStation(context.Background(), model.StationDraft{})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, DefaultName, s.Name)
	assert.Equal(t, model.StationKindFast, s.Kind)
	assert.Equal(t, 4, s.SlotsTotal)
	assert.Equal(t, 4, s.SlotsAvailable)
	assert.Equal(t, 12.0, s.PricePerKwh)
	assert.Equal(t, DefaultLat, s.Lat)
	assert.Equal(t, DefaultLon, s.Lon)
	assert.Equal(t, 5.0, s.Rating)
	assert.Equal(t, model.StationStatusOnline, s.Status)
	assert.Equal(t, 0, s.PredictedWaitTime)
	assert.Empty(t, s.Amenities)
}

func TestCreateStation_AvailableEqualsTotal(t *testing.T) {
	c := New(repository.NewStationMemory(), nil)

	for _, slots := range []int{1, 2, 7, 40} {
		s, err := c.CreateStation(context.Background(), model.StationDraft{SlotsTotal: ptr(slots)})
		require.NoError(t, err)
		assert.Equal(t, slots, s.SlotsTotal)
		assert.Equal(t, s.SlotsTotal, s.SlotsAvailable)
		assert.GreaterOrEqual(t, s.SlotsAvailable, 0)
	}
}

func TestCreateStation_KeepsExplicitZeroPrice(t *testing.T) {
	c := New(repository.NewStationMemory(), nil)

	s, err := c.CreateStation(context.Background(), model.StationDraft{
		Kind:        ptr(model.StationKindSwap),
		PricePerKwh: ptr(0.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.PricePerKwh)
	assert.Equal(t, model.StationKindSwap, s.Kind)
}

func TestCreateStation_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		draft model.StationDraft
	}{
		{name: "zero slots", draft: model.StationDraft{SlotsTotal: ptr(0)}},
		{name: "negative slots", draft: model.StationDraft{SlotsTotal: ptr(-3)}},
		{name: "negative price", draft: model.StationDraft{PricePerKwh: ptr(-1.0)}},
		{name: "unknown kind", draft: model.StationDraft{Kind: ptr(model.StationKind("hydrogen"))}},
		{name: "latitude out of range", draft: model.StationDraft{Lat: ptr(91.0)}},
		{name: "longitude out of range", draft: model.StationDraft{Lon: ptr(-181.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(repository.NewStationMemory(), nil)

			_, err := c.CreateStation(context.Background(), tt.draft)
			require.ErrorIs(t, err, model.ErrInvalidInput)

			all, err := c.ListStations(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestGetStation_RoundTrip(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.CreateStation(ctx, model.StationDraft{
		Name:        ptr("Test"),
		SlotsTotal:  ptr(4),
		PricePerKwh: ptr(12.0),
		HostID:      ptr("host-7"),
		Amenities:   []string{"WiFi"},
	})
	require.NoError(t, err)

	got, ok, err := c.GetStation(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("station mismatch (-want +got):\n%s", diff)
	}
}

func TestGetStation_Missing(t *testing.T) {
	c := newTestCatalog(t)

	_, ok, err := c.GetStation(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetStation_ReturnsCopy(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	s, ok, err := c.GetStation(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)

	s.Amenities[0] = "changed"
	s.Name = "changed"

	again, _, err := c.GetStation(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "WiFi", again.Amenities[0])
	assert.Equal(t, "Green Energy Hub - Koramangala", again.Name)
}

func TestListStations_InsertionOrder(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.CreateStation(ctx, model.StationDraft{Name: ptr("Last")})
	require.NoError(t, err)

	all, err := c.ListStations(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(SeedStations())+1)

	for i, s := range SeedStations() {
		assert.Equal(t, s.ID, all[i].ID)
	}
	assert.Equal(t, created.ID, all[len(all)-1].ID)
}

func TestListStationsByHost(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.CreateStation(ctx, model.StationDraft{HostID: ptr("42")})
	require.NoError(t, err)

	own, err := c.ListStationsByHost(ctx, "42")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "42", own[0].HostID)

	seeded, err := c.ListStationsByHost(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, seeded, len(SeedStations()))

	none, err := c.ListStationsByHost(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPredictedWaitTime(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	wait, err := c.PredictedWaitTime(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 18, wait)

	wait, err = c.PredictedWaitTime(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, FallbackWaitTime, wait)

	created, err := c.CreateStation(ctx, model.StationDraft{})
	require.NoError(t, err)
	wait, err = c.PredictedWaitTime(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, FallbackWaitTime, wait)
}

func TestSeedInvariant(t *testing.T) {
	for _, s := range SeedStations() {
		assert.GreaterOrEqual(t, s.SlotsAvailable, 0, s.ID)
		assert.LessOrEqual(t, s.SlotsAvailable, s.SlotsTotal, s.ID)
	}
}

func TestReset(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.CreateStation(ctx, model.StationDraft{})
	require.NoError(t, err)

	require.NoError(t, c.Reset(ctx))

	all, err := c.ListStations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(SeedStations()))
}

type failingRepo struct {
	repository.StationMemory
}

func (f *failingRepo) GetStation(context.Context, string) (*model.Station, error) {
	return nil, errors.New("connection refused")
}

func TestGetStation_PropagatesStorageError(t *testing.T) {
	c := New(&failingRepo{}, nil)

	_, ok, err := c.GetStation(context.Background(), "1")
	require.Error(t, err)
	assert.False(t, ok)
}
