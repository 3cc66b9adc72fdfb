package season

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmdesk/internal/api"
	"farmdesk/internal/cache"
)

func newSeasonService(t *testing.T, handler http.Handler) (*Service, *cache.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := cache.New(cache.Options{StaleAfter: time.Hour, EvictAfter: time.Hour})
	client := api.NewClient(api.ClientOptions{BaseURL: srv.URL})
	return NewService(client, store, nil), store
}

func TestService_CreateConflict_ListRevertsExactly(t *testing.T) {
	existing := []Season{
		{ID: 1, PlotID: 3, Name: "Winter24", Status: StatusCompleted},
		{ID: 2, PlotID: 3, Name: "Autumn24", Status: StatusActive},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/seasons", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.Page[Season]{
			Items: existing, Page: 1, Size: 2, TotalElements: 2, TotalPages: 1,
		})
	})
	mux.HandleFunc("POST /api/seasons", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(409)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "plot already has an active season"})
	})

	svc, _ := newSeasonService(t, mux)
	ctx := context.Background()

	before, err := svc.ListByPlot(ctx, 3, ListQuery{})
	require.NoError(t, err)
	require.Len(t, before.Items, 2)

	h, err := svc.Create(ctx, CreatePayload{Name: "Spring25", PlotID: 3})
	require.NoError(t, err)

	_, err = h.Wait(ctx)
	require.Error(t, err)
	assert.Equal(t, api.KindConflict, api.KindOf(err))
	assert.Contains(t, err.Error(), "plot already has an active season")

	after, err := svc.ListByPlot(ctx, 3, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, after), "list reverts to exactly its original 2 items")
}

func TestService_CreateValidation_NeverDispatches(t *testing.T) {
	mux := http.NewServeMux()
	called := false
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { called = true })
	svc, _ := newSeasonService(t, mux)

	_, err := svc.Create(context.Background(), CreatePayload{Name: "", PlotID: 0})
	require.Error(t, err)
	assert.False(t, called)
}

func TestService_ActivateSetsActualStartOptimistically(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/seasons/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]Season{"result": {ID: 4, PlotID: 3, Name: "Spring25", Status: StatusPlanned}})
	})
	release := make(chan struct{})
	mux.HandleFunc("POST /api/seasons/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(map[string]Season{"result": {ID: 4, PlotID: 3, Name: "Spring25", Status: StatusActive}})
	})

	svc, store := newSeasonService(t, mux)
	ctx := context.Background()

	_, err := svc.Get(ctx, 4)
	require.NoError(t, err)

	start := "2026-03-01"
	h, err := svc.ChangeStatus(ctx, 4, StatusPayload{Status: StatusActive, ActualStart: &start})
	require.NoError(t, err)

	v, ok := store.Get(cache.DetailKey(Kind, 4))
	require.True(t, ok)
	got := v.(Season)
	assert.Equal(t, StatusActive, got.Status)
	require.NotNil(t, got.ActualStart)
	assert.Equal(t, "2026-03-01", *got.ActualStart)
	assert.Equal(t, "Spring25", got.Name, "non-status fields untouched")

	close(release)
	_, err = h.Wait(ctx)
	require.NoError(t, err)
}

func TestParseStatus_RejectsUnknown(t *testing.T) {
	for _, valid := range []string{"PLANNED", "ACTIVE", "COMPLETED", "CANCELLED", "ARCHIVED"} {
		_, err := ParseStatus(valid)
		assert.NoError(t, err)
	}
	_, err := ParseStatus("DORMANT")
	assert.Error(t, err)
}

func TestCreatePayload_DateOrdering(t *testing.T) {
	p := CreatePayload{Name: "Spring25", PlotID: 3, PlannedStart: "2026-06-01", PlannedEnd: "2026-05-01"}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plannedEnd")
}
