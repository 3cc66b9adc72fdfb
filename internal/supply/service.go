package supply

import (
	"context"
	"log"
	"strconv"
	"time"

	"farmdesk/internal/api"
	"farmdesk/internal/cache"
	"farmdesk/internal/mutate"
)

const apiPath = "/api/supplies"

// Service is the UI-facing client for supplies. Supplies have no parent
// scope, so only workspace list views exist.
type Service struct {
	client *api.Client
	store  *cache.Store
	coord  *mutate.Coordinator[Supply]
	log    *log.Logger
}

func NewService(client *api.Client, store *cache.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		client: client,
		store:  store,
		coord:  mutate.NewCoordinator[Supply](store, logger),
		log:    logger,
	}
}

func (s *Service) List(ctx context.Context, q ListQuery) (api.Page[Supply], error) {
	key := cache.WorkspaceListKey(Kind, q.Filters())
	if v, ok := s.store.Fresh(key); ok {
		if page, isPage := v.(api.Page[Supply]); isPage {
			return page, nil
		}
	}
	page, err := api.List[Supply](ctx, s.client, apiPath, q.Query())
	if err != nil {
		return api.Page[Supply]{}, err
	}
	s.store.Put(key, page)
	return page, nil
}

func (s *Service) Get(ctx context.Context, id int) (Supply, error) {
	key := cache.DetailKey(Kind, id)
	if v, ok := s.store.Fresh(key); ok {
		if item, isSupply := v.(Supply); isSupply {
			return item, nil
		}
	}
	item, err := api.Get[Supply](ctx, s.client, apiPath+"/"+strconv.Itoa(id))
	if err != nil {
		return Supply{}, err
	}
	s.store.Put(key, item)
	return item, nil
}

func (s *Service) Create(ctx context.Context, p CreatePayload) (*mutate.Handle[Supply], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	views := mutate.Views{Lists: s.store.Keys(cache.WorkspaceListPrefix(Kind))}
	h := s.coord.Create(ctx, views, func(tempID int) Supply {
		return Supply{
			ID:           tempID,
			Name:         p.Name,
			Unit:         p.Unit,
			Quantity:     p.Quantity,
			ReorderLevel: p.ReorderLevel,
			CreatedAt:    time.Now(),
		}
	}, func(ctx context.Context) (Supply, error) {
		return api.Post[Supply](ctx, s.client, apiPath, &p)
	})
	return h, nil
}

func (s *Service) Update(ctx context.Context, id int, p UpdatePayload) (*mutate.Handle[Supply], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h := s.coord.Update(ctx, id, s.viewsFor(id), func(item *Supply) {
		if p.Name != nil {
			item.Name = *p.Name
		}
		if p.Unit != nil {
			item.Unit = *p.Unit
		}
		if p.Quantity != nil {
			item.Quantity = *p.Quantity
		}
		if p.ReorderLevel != nil {
			item.ReorderLevel = *p.ReorderLevel
		}
	}, func(ctx context.Context) (Supply, error) {
		return api.Put[Supply](ctx, s.client, apiPath+"/"+strconv.Itoa(id), &p)
	})
	return h, nil
}

func (s *Service) Remove(ctx context.Context, id int) *mutate.Handle[Supply] {
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
