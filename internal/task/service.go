package task

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"time"

	"farmdesk/internal/api"
	"farmdesk/internal/cache"
	"farmdesk/internal/mutate"
)

const apiPath = "/api/tasks"

// Service is the UI-facing client for tasks: cached reads plus optimistic
// mutations. All cache writes go through the coordinator so readers observe
// either a fully-applied speculative state or a fully-restored snapshot.
type Service struct {
	client *api.Client
	store  *cache.Store
	coord  *mutate.Coordinator[Task]
	log    *log.Logger
}

func NewService(client *api.Client, store *cache.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		client: client,
		store:  store,
		coord:  mutate.NewCoordinator[Task](store, logger),
		log:    logger,
	}
}

// List reads the workspace-wide task list, fetching only when the cached
// view is stale or absent.
func (s *Service) List(ctx context.Context, q ListQuery) (api.Page[Task], error) {
	key := cache.WorkspaceListKey(Kind, q.Filters())
	return s.listView(ctx, key, q.Query())
}

// ListBySeason reads the season-scoped task list.
func (s *Service) ListBySeason(ctx context.Context, seasonID int, q ListQuery) (api.Page[Task], error) {
	key := cache.ParentListKey(Kind, parentKind, seasonID, q.Filters())
	query := q.Query()
	query.Set("seasonId", strconv.Itoa(seasonID))
	return s.listView(ctx, key, query)
}

func (s *Service) listView(ctx context.Context, key cache.Key, query url.Values) (api.Page[Task], error) {
	if v, ok := s.store.Fresh(key); ok {
		if page, isPage := v.(api.Page[Task]); isPage {
			return page, nil
		}
	}
	page, err := api.List[Task](ctx, s.client, apiPath, query)
	if err != nil {
		return api.Page[Task]{}, err
	}
	s.store.Put(key, page)
	return page, nil
}

// Get reads one task's detail view.
func (s *Service) Get(ctx context.Context, id int) (Task, error) {
	key := cache.DetailKey(Kind, id)
	if v, ok := s.store.Fresh(key); ok {
		if t, isTask := v.(Task); isTask {
			return t, nil
		}
	}
	t, err := api.Get[Task](ctx, s.client, apiPath+"/"+strconv.Itoa(id))
	if err != nil {
		return Task{}, err
	}
	s.store.Put(key, t)
	return t, nil
}

// Create dispatches an optimistic creation. A placeholder with a temporary
// id and the default initial status appears immediately in every cached
// target list; the caller learns the outcome through the handle.
func (s *Service) Create(ctx context.Context, p CreatePayload) (*mutate.Handle[Task], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	views := mutate.Views{Lists: s.createTargets(p.SeasonID)}
	h := s.coord.Create(ctx, views, func(tempID int) Task {
		return Task{
			ID:        tempID,
			SeasonID:  p.SeasonID,
			Title:     p.Title,
			Notes:     p.Notes,
			DueDate:   p.DueDate,
			Quantity:  p.Quantity,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		}
	}, func(ctx context.Context) (Task, error) {
		return api.Post[Task](ctx, s.client, apiPath, &p)
	})
	return h, nil
}

// Update dispatches an optimistic field edit across every view the task
// appears in.
func (s *Service) Update(ctx context.Context, id int, p UpdatePayload) (*mutate.Handle[Task], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := s.coord.Update(ctx, id, s.viewsFor(id), func(t *Task) {
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Notes != nil {
			t.Notes = *p.Notes
		}
		if p.DueDate != nil {
			t.DueDate = *p.DueDate
		}
		if p.Quantity != nil {
			q := *p.Quantity
			t.Quantity = &q
		}
	}, func(ctx context.Context) (Task, error) {
		return api.Put[Task](ctx, s.client, apiPath+"/"+strconv.Itoa(id), &p)
	})
	return h, nil
}

// ChangeStatus dispatches an optimistic lifecycle transition. Only the
// status field and transition-supplied dates are touched speculatively;
// whether the transition is legal is the server's decision.
func (s *Service) ChangeStatus(ctx context.Context, id int, p StatusPayload) (*mutate.Handle[Task], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := s.coord.ChangeStatus(ctx, id, s.viewsFor(id), func(t *Task) {
		t.Status = p.Status
		if p.StartedAt != nil {
			v := *p.StartedAt
			t.StartedAt = &v
		}
		if p.CompletedAt != nil {
			v := *p.CompletedAt
			t.CompletedAt = &v
		}
	}, func(ctx context.Context) (Task, error) {
		return api.Post[Task](ctx, s.client, apiPath+"/"+strconv.Itoa(id)+"/status", &p)
	})
	return h, nil
}

// Remove dispatches an optimistic deletion: the task vanishes from every
// cached list view immediately and reappears if the server declines.
func (s *Service) Remove(ctx context.Context, id int) *mutate.Handle[Task] {
	return s.coord.Delete(ctx, id, s.viewsFor(id), func(ctx context.Context) error {
		return api.Delete(ctx, s.client, apiPath+"/"+strconv.Itoa(id))
	})
}

// viewsFor collects every cached view that could contain task id: its detail
// view plus all cached task list views, season-scoped or workspace-wide.
func (s *Service) viewsFor(id int) mutate.Views {
	return mutate.Views{
		Detail: cache.DetailKey(Kind, id),
		Lists:  s.store.Keys(cache.ListPrefix(Kind)),
	}
}

// createTargets collects the lists a new task should appear in: every cached
// workspace list, plus the season-scoped lists of its own season. Lists of
// other seasons are never touched.
func (s *Service) createTargets(seasonID *int) []cache.Key {
	keys := s.store.Keys(cache.WorkspaceListPrefix(Kind))
	if seasonID != nil {
		keys = append(keys, s.store.Keys(cache.ParentListPrefix(Kind, parentKind, *seasonID))...)
	}
	return keys
}
