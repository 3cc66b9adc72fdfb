package incident

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

const apiPath = "/api/incidents"

// Service is the UI-facing client for field incidents.
type Service struct {
	client *api.Client
	store  *cache.Store
	coord  *mutate.Coordinator[Incident]
	log    *log.Logger
}

func NewService(client *api.Client, store *cache.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		client: client,
		store:  store,
		coord:  mutate.NewCoordinator[Incident](store, logger),
		log:    logger,
	}
}

func (s *Service) List(ctx context.Context, q ListQuery) (api.Page[Incident], error) {
	key := cache.WorkspaceListKey(Kind, q.Filters())
	return s.listView(ctx, key, q.Query())
}

func (s *Service) ListBySeason(ctx context.Context, seasonID int, q ListQuery) (api.Page[Incident], error) {
	key := cache.ParentListKey(Kind, parentKind, seasonID, q.Filters())
	query := q.Query()
	query.Set("seasonId", strconv.Itoa(seasonID))
	return s.listView(ctx, key, query)
}

func (s *Service) listView(ctx context.Context, key cache.Key, query url.Values) (api.Page[Incident], error) {
	if v, ok := s.store.Fresh(key); ok {
		if page, isPage := v.(api.Page[Incident]); isPage {
			return page, nil
		}
	}
	page, err := api.List[Incident](ctx, s.client, apiPath, query)
	if err != nil {
		return api.Page[Incident]{}, err
	}
	s.store.Put(key, page)
	return page, nil
}

func (s *Service) Get(ctx context.Context, id int) (Incident, error) {
	key := cache.DetailKey(Kind, id)
	if v, ok := s.store.Fresh(key); ok {
		if in, isIncident := v.(Incident); isIncident {
			return in, nil
		}
	}
	in, err := api.Get[Incident](ctx, s.client, apiPath+"/"+strconv.Itoa(id))
	if err != nil {
		return Incident{}, err
	}
	s.store.Put(key, in)
	return in, nil
}

func (s *Service) Create(ctx context.Context, p CreatePayload) (*mutate.Handle[Incident], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	views := mutate.Views{Lists: s.createTargets(p.SeasonID)}
	h := s.coord.Create(ctx, views, func(tempID int) Incident {
		return Incident{
			ID:          tempID,
			SeasonID:    p.SeasonID,
			Title:       p.Title,
			Description: p.Description,
			Severity:    p.Severity,
			OccurredAt:  p.OccurredAt,
			Status:      StatusOpen,
			CreatedAt:   time.Now(),
		}
	}, func(ctx context.Context) (Incident, error) {
		return api.Post[Incident](ctx, s.client, apiPath, &p)
	})
	return h, nil
}

func (s *Service) Update(ctx context.Context, id int, p UpdatePayload) (*mutate.Handle[Incident], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := s.coord.Update(ctx, id, s.viewsFor(id), func(in *Incident) {
		if p.Title != nil {
			in.Title = *p.Title
		}
		if p.Description != nil {
			in.Description = *p.Description
		}
		if p.Severity != nil {
			in.Severity = *p.Severity
		}
		if p.OccurredAt != nil {
			in.OccurredAt = *p.OccurredAt
		}
	}, func(ctx context.Context) (Incident, error) {
		return api.Put[Incident](ctx, s.client, apiPath+"/"+strconv.Itoa(id), &p)
	})
	return h, nil
}

func (s *Service) ChangeStatus(ctx context.Context, id int, p StatusPayload) (*mutate.Handle[Incident], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := s.coord.ChangeStatus(ctx, id, s.viewsFor(id), func(in *Incident) {
		in.Status = p.Status
		if p.ResolvedAt != nil {
			v := *p.ResolvedAt
			in.ResolvedAt = &v
		}
	}, func(ctx context.Context) (Incident, error) {
		return api.Post[Incident](ctx, s.client, apiPath+"/"+strconv.Itoa(id)+"/status", &p)
	})
	return h, nil
}

func (s *Service) Remove(ctx context.Context, id int) *mutate.Handle[Incident] {
	return s.coord.Delete(ctx, id, s.viewsFor(id), func(ctx context.Context) error {
		return api.Delete(ctx, s.client, apiPath+"/"+strconv.Itoa(id))
	})
}

func (s *Service) viewsFor(id int) mutate.Views {
	return mutate.Views{
		Detail: cache.DetailKey(Kind, id),
		Lists:  s.store.Keys(cache.ListPrefix(Kind)),
	}
}

func (s *Service) createTargets(seasonID int) []cache.Key {
	keys := s.store.Keys(cache.WorkspaceListPrefix(Kind))
	return append(keys, s.store.Keys(cache.ParentListPrefix(Kind, parentKind, seasonID))...)
}
