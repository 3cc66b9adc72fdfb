package task

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmdesk/internal/api"
	"farmdesk/internal/cache"
)

// fakeBackend is an in-memory task server speaking the real wire envelopes.
type fakeBackend struct {
	mu     sync.Mutex
	tasks  map[int]Task
	nextID int
	lists  int // GET /api/tasks call count

	rejectUpdate func(p UpdatePayload) *api.Error
	rejectStatus func(p StatusPayload) *api.Error
}

func newFakeBackend(seed ...Task) *fakeBackend {
	b := &fakeBackend{tasks: map[int]Task{}, nextID: 100}
	for _, t := range seed {
		b.tasks[t.ID] = t
	}
	return b
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.lists++
		var items []Task
		seasonFilter := r.URL.Query().Get("seasonId")
		for _, t := range b.tasks {
			if seasonFilter != "" {
				if t.SeasonID == nil || strconv.Itoa(*t.SeasonID) != seasonFilter {
					continue
				}
			}
			items = append(items, t)
		}
		writeJSON(w, 200, api.Page[Task]{
			Items: items, Page: 1, Size: len(items),
			TotalElements: len(items), TotalPages: 1,
		})
	})
	mux.HandleFunc("GET /api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		t, ok := b.tasks[id]
		if !ok {
			writeJSON(w, 404, map[string]string{"error": "task not found"})
			return
		}
		writeJSON(w, 200, map[string]Task{"result": t})
	})
	mux.HandleFunc("POST /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var p CreatePayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		b.nextID++
		t := Task{ID: b.nextID, SeasonID: p.SeasonID, Title: p.Title, Notes: p.Notes,
			DueDate: p.DueDate, Status: StatusPending, CreatedAt: time.Now()}
		b.tasks[t.ID] = t
		writeJSON(w, 201, map[string]Task{"result": t})
	})
	mux.HandleFunc("PUT /api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		t, ok := b.tasks[id]
		if !ok {
			writeJSON(w, 404, map[string]string{"error": "task not found"})
			return
		}
		var p UpdatePayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		if b.rejectUpdate != nil {
			if apiErr := b.rejectUpdate(p); apiErr != nil {
				writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Message})
				return
			}
		}
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Notes != nil {
			t.Notes = *p.Notes
		}
		if p.DueDate != nil {
			t.DueDate = *p.DueDate
		}
		b.tasks[id] = t
		writeJSON(w, 200, map[string]Task{"result": t})
	})
	mux.HandleFunc("POST /api/tasks/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		t, ok := b.tasks[id]
		if !ok {
			writeJSON(w, 404, map[string]string{"error": "task not found"})
			return
		}
		var p StatusPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		if b.rejectStatus != nil {
			if apiErr := b.rejectStatus(p); apiErr != nil {
				writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Message})
				return
			}
		}
		t.Status = p.Status
		if p.StartedAt != nil {
			t.StartedAt = p.StartedAt
		}
		if p.CompletedAt != nil {
			t.CompletedAt = p.CompletedAt
		}
		b.tasks[id] = t
		writeJSON(w, 200, map[string]Task{"result": t})
	})
	mux.HandleFunc("DELETE /api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		if _, ok := b.tasks[id]; !ok {
			writeJSON(w, 404, map[string]string{"error": "task not found"})
			return
		}
		delete(b.tasks, id)
		writeJSON(w, 200, map[string]bool{"ok": true})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T, backend *fakeBackend) (*Service, *cache.Store) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	store := cache.New(cache.Options{StaleAfter: time.Hour, EvictAfter: time.Hour})
	client := api.NewClient(api.ClientOptions{BaseURL: srv.URL})
	return NewService(client, store, log.New(testWriter{t}, "", 0)), store
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestService_ListCachesUntilStale(t *testing.T) {
	backend := newFakeBackend(Task{ID: 1, Title: "a", Status: StatusPending})
	svc, _ := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	_, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.lists, "second read is served from cache")

	// A different filter scope is a different view.
	_, err = svc.List(ctx, ListQuery{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.lists)
}

func TestService_StatusChange_CrossViewConsistency(t *testing.T) {
	backend := newFakeBackend(Task{ID: 42, SeasonID: intPtr(5), Title: "Harvest", Status: StatusPending})
	svc, _ := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.Get(ctx, 42)
	require.NoError(t, err)
	_, err = svc.ListBySeason(ctx, 5, ListQuery{})
	require.NoError(t, err)
	_, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)

	h, err := svc.ChangeStatus(ctx, 42, StatusPayload{Status: StatusInProgress})
	require.NoError(t, err)
	_, err = h.Wait(ctx)
	require.NoError(t, err)

	// Every view reads the same post-transition status; no view lags.
	got, err := svc.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)

	seasonPage, err := svc.ListBySeason(ctx, 5, ListQuery{})
	require.NoError(t, err)
	require.Len(t, seasonPage.Items, 1)
	assert.Equal(t, StatusInProgress, seasonPage.Items[0].Status)

	wsPage, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, wsPage.Items, 1)
	assert.Equal(t, StatusInProgress, wsPage.Items[0].Status)
}

func TestService_ConcurrentEdits_FailedEditNotReintroduced(t *testing.T) {
	backend := newFakeBackend(Task{ID: 7, SeasonID: intPtr(5), Title: "Prune vines", Notes: "row 3", Status: StatusPending})
	backend.rejectUpdate = func(p UpdatePayload) *api.Error {
		if p.Title != nil {
			return &api.Error{Kind: api.KindConflict, Status: 409, Message: "title locked by another editor"}
		}
		return nil
	}
	svc, _ := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	_, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)

	hA, err := svc.Update(ctx, 7, UpdatePayload{Title: strPtr("X")})
	require.NoError(t, err)
	hB, err := svc.Update(ctx, 7, UpdatePayload{Notes: strPtr("Y")})
	require.NoError(t, err)

	_, errA := hA.Wait(ctx)
	require.Error(t, errA)
	assert.Equal(t, api.KindConflict, api.KindOf(errA))
	_, errB := hB.Wait(ctx)
	require.NoError(t, errB)

	// A rolled back, B applied: original title, new notes, never a merge
	// that reintroduces A's title.
	got, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Prune vines", got.Title)
	assert.Equal(t, "Y", got.Notes)
}

func TestService_DeleteRemovesFromAllLists(t *testing.T) {
	backend := newFakeBackend(
		Task{ID: 9, SeasonID: intPtr(5), Title: "Weed beds", Status: StatusPending},
		Task{ID: 10, SeasonID: intPtr(5), Title: "Mow paths", Status: StatusPending},
	)
	svc, store := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.ListBySeason(ctx, 5, ListQuery{})
	require.NoError(t, err)
	_, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)

	h := svc.Remove(ctx, 9)

	// Optimistic removal is visible in both cached lists before settlement.
	for _, k := range store.Keys(cache.ListPrefix(Kind)) {
		v, ok := store.Get(k)
		require.True(t, ok)
		for _, item := range v.(api.Page[Task]).Items {
			assert.NotEqual(t, 9, item.ID)
		}
	}

	_, err = h.Wait(ctx)
	require.NoError(t, err)

	seasonPage, err := svc.ListBySeason(ctx, 5, ListQuery{})
	require.NoError(t, err)
	wsPage, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	for _, page := range []api.Page[Task]{seasonPage, wsPage} {
		for _, item := range page.Items {
			assert.NotEqual(t, 9, item.ID)
		}
	}
}

func TestService_CreateValidationTouchesNothing(t *testing.T) {
	backend := newFakeBackend()
	svc, store := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	listsBefore := backend.lists

	_, err = svc.Create(ctx, CreatePayload{Title: "  ", Quantity: func() *float64 { v := -1.0; return &v }()})
	require.Error(t, err)

	// No cache write, no network call.
	v, ok := store.Fresh(cache.WorkspaceListKey(Kind, cache.Filters{}))
	require.True(t, ok)
	assert.Empty(t, v.(api.Page[Task]).Items)
	assert.Equal(t, listsBefore, backend.lists)
}

func TestService_CreateAppearsInBothListsImmediately(t *testing.T) {
	backend := newFakeBackend()
	svc, store := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.ListBySeason(ctx, 5, ListQuery{})
	require.NoError(t, err)
	_, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)

	h, err := svc.Create(ctx, CreatePayload{Title: "Irrigate", SeasonID: intPtr(5)})
	require.NoError(t, err)

	// Same synchronous pass: both the season-scoped and workspace lists show
	// the speculative title.
	for _, k := range store.Keys(cache.ListPrefix(Kind)) {
		v, ok := store.Get(k)
		require.True(t, ok)
		page := v.(api.Page[Task])
		require.NotEmpty(t, page.Items, "view %s", k)
		assert.Equal(t, "Irrigate", page.Items[0].Title)
	}

	created, err := h.Wait(ctx)
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	// After settlement the authoritative row replaces the placeholder.
	page, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
}
