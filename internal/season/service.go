package season

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

const apiPath = "/api/seasons"

// Service is the UI-facing client for growing seasons.
type Service struct {
	client *api.Client
	store  *cache.Store
	coord  *mutate.Coordinator[Season]
	log    *log.Logger
}

func NewService(client *api.Client, store *cache.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		client: client,
		store:  store,
		coord:  mutate.NewCoordinator[Season](store, logger),
		log:    logger,
	}
}

func (s *Service) List(ctx context.Context, q ListQuery) (api.Page[Season], error) {
	key := cache.WorkspaceListKey(Kind, q.Filters())
	return s.listView(ctx, key, q.Query())
}

func (s *Service) ListByPlot(ctx context.Context, plotID int, q ListQuery) (api.Page[Season], error) {
	key := cache.ParentListKey(Kind, parentKind, plotID, q.Filters())
	query := q.Query()
	query.Set("plotId", strconv.Itoa(plotID))
	return s.listView(ctx, key, query)
}

func (s *Service) listView(ctx context.Context, key cache.Key, query url.Values) (api.Page[Season], error) {
	if v, ok := s.store.Fresh(key); ok {
		if page, isPage := v.(api.Page[Season]); isPage {
			return page, nil
		}
	}
	page, err := api.List[Season](ctx, s.client, apiPath, query)
	if err != nil {
		return api.Page[Season]{}, err
	}
	s.store.Put(key, page)
	return page, nil
}

func (s *Service) Get(ctx context.Context, id int) (Season, error) {
	key := cache.DetailKey(Kind, id)
	if v, ok := s.store.Fresh(key); ok {
		if se, isSeason := v.(Season); isSeason {
			return se, nil
		}
	}
	se, err := api.Get[Season](ctx, s.client, apiPath+"/"+strconv.Itoa(id))
	if err != nil {
		return Season{}, err
	}
	s.store.Put(key, se)
	return se, nil
}

func (s *Service) Create(ctx context.Context, p CreatePayload) (*mutate.Handle[Season], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	views := mutate.Views{Lists: s.createTargets(p.PlotID)}
	h := s.coord.Create(ctx, views, func(tempID int) Season {
		return Season{
			ID:           tempID,
			PlotID:       p.PlotID,
			Name:         p.Name,
			PlannedStart: p.PlannedStart,
			PlannedEnd:   p.PlannedEnd,
			Notes:        p.Notes,
			Status:       StatusPlanned,
			CreatedAt:    time.Now(),
		}
	}, func(ctx context.Context) (Season, error) {
		return api.Post[Season](ctx, s.client, apiPath, &p)
	})
	return h, nil
}

func (s *Service) Update(ctx context.Context, id int, p UpdatePayload) (*mutate.Handle[Season], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := s.coord.Update(ctx, id, s.viewsFor(id), func(se *Season) {
		if p.Name != nil {
			se.Name = *p.Name
		}
		if p.PlannedStart != nil {
			se.PlannedStart = *p.PlannedStart
		}
		if p.PlannedEnd != nil {
			se.PlannedEnd = *p.PlannedEnd
		}
		if p.Notes != nil {
			se.Notes = *p.Notes
		}
	}, func(ctx context.Context) (Season, error) {
		return api.Put[Season](ctx, s.client, apiPath+"/"+strconv.Itoa(id), &p)
	})
	return h, nil
}

func (s *Service) ChangeStatus(ctx context.Context, id int, p StatusPayload) (*mutate.Handle[Season], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := s.coord.ChangeStatus(ctx, id, s.viewsFor(id), func(se *Season) {
		se.Status = p.Status
		if p.ActualStart != nil {
			v := *p.ActualStart
			se.ActualStart = &v
		}
		if p.ActualEnd != nil {
			v := *p.ActualEnd
			se.ActualEnd = &v
		}
	}, func(ctx context.Context) (Season, error) {
		return api.Post[Season](ctx, s.client, apiPath+"/"+strconv.Itoa(id)+"/status", &p)
	})
	return h, nil
}

func (s *Service) Remove(ctx context.Context, id int) *mutate.Handle[Season] {
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

func (s *Service) createTargets(plotID int) []cache.Key {
	keys := s.store.Keys(cache.WorkspaceListPrefix(Kind))
	return append(keys, s.store.Keys(cache.ParentListPrefix(Kind, parentKind, plotID))...)
}
