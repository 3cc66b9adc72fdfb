package mutate

import (
	"context"
	"io"
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"farmdesk/internal/api"
	"farmdesk/internal/cache"
)

// Entity is the contract a cached entity type must satisfy: a stable integer
// identity and a deep copy, so snapshots never share memory with live views.
type Entity[T any] interface {
	EntityID() int
	Clone() T
}

// Views names the cached views one mutation could touch: the entity's detail
// view plus every list view whose scope could include it (parent-scoped and
// workspace-wide).
type Views struct {
	Detail cache.Key
	Lists  []cache.Key
}

func (v Views) all() []cache.Key {
	keys := make([]cache.Key, 0, len(v.Lists)+1)
	if v.Detail != "" {
		keys = append(keys, v.Detail)
	}
	return append(keys, v.Lists...)
}

// Coordinator applies mutations optimistically: snapshot the affected views,
// write the speculative value, fire the remote call, then on settlement
// either mark the views for authoritative refresh or restore the snapshots.
// One coordinator serves one entity type against one cache store.
type Coordinator[T Entity[T]] struct {
	store *cache.Store
	log   *log.Logger
	temp  atomic.Int64
}

func NewCoordinator[T Entity[T]](store *cache.Store, logger *log.Logger) *Coordinator[T] {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Coordinator[T]{store: store, log: logger}
}

// intent is one in-flight mutation plus its snapshot arena. Each intent owns
// its own snapshots, taken at its own dispatch time; intents on the same
// entity never share or merge them.
type intent struct {
	id    uuid.UUID
	keys  []cache.Key
	snaps map[cache.Key]cache.Snapshot
}

// Create dispatches an entity creation. The placeholder receives a temporary
// id (always negative, so it can never collide with a server-assigned one)
// and is prepended to every cached target list until the server responds with
// the authoritative entity.
func (c *Coordinator[T]) Create(ctx context.Context, views Views, placeholder func(tempID int) T, remote func(context.Context) (T, error)) *Handle[T] {
	tempID := int(-c.temp.Add(1))
	return c.dispatch(ctx, views, func(tx *cache.Tx) {
		ph := placeholder(tempID)
		for _, k := range views.Lists {
			v, ok := tx.Get(k)
			page, isPage := v.(api.Page[T])
			if !ok || !isPage {
				continue
			}
			items := make([]T, 0, len(page.Items)+1)
			items = append(items, ph)
			for _, it := range page.Items {
				items = append(items, it.Clone())
			}
			page.Items = items
			page.TotalElements++
			tx.Put(k, page)
		}
	}, remote)
}

// Update dispatches a field edit. apply is run against a deep copy of the
// entity wherever it appears across the affected views.
func (c *Coordinator[T]) Update(ctx context.Context, entityID int, views Views, apply func(*T), remote func(context.Context) (T, error)) *Handle[T] {
	return c.dispatch(ctx, views, func(tx *cache.Tx) {
		c.applyEverywhere(tx, entityID, views, apply)
	}, remote)
}

// ChangeStatus dispatches a lifecycle transition request. Mechanically it is
// an Update whose apply touches only the status field and any
// transition-supplied dates; the separate entry point keeps call sites
// honest about which kind of mutation they perform.
func (c *Coordinator[T]) ChangeStatus(ctx context.Context, entityID int, views Views, apply func(*T), remote func(context.Context) (T, error)) *Handle[T] {
	return c.dispatch(ctx, views, func(tx *cache.Tx) {
		c.applyEverywhere(tx, entityID, views, apply)
	}, remote)
}

// Delete dispatches a removal. The entity disappears speculatively from
// every cached list view; the detail view is snapshotted and refreshed on
// success but never edited speculatively, since a detail view has no
// "deleted" representation.
func (c *Coordinator[T]) Delete(ctx context.Context, entityID int, views Views, remote func(context.Context) error) *Handle[T] {
	return c.dispatch(ctx, views, func(tx *cache.Tx) {
		for _, k := range views.Lists {
			v, ok := tx.Get(k)
			page, isPage := v.(api.Page[T])
			if !ok || !isPage {
				continue
			}
			items := make([]T, 0, len(page.Items))
			removed := false
			for _, it := range page.Items {
				if it.EntityID() == entityID {
					removed = true
					continue
				}
				items = append(items, it.Clone())
			}
			if !removed {
				continue
			}
			page.Items = items
			page.TotalElements--
			tx.Put(k, page)
		}
	}, func(ctx context.Context) (T, error) {
		var zero T
		return zero, remote(ctx)
	})
}

// dispatch snapshots the affected views and applies the speculative write
// under a single cache lock, so a second intent dispatched on the same entity
// snapshots the state after this one's speculative write, never before it.
// The remote call runs detached from the caller's cancellation: a dispatched
// intent always settles and reconciles the cache, even if the caller has
// navigated away.
func (c *Coordinator[T]) dispatch(ctx context.Context, views Views, speculate func(tx *cache.Tx), remote func(context.Context) (T, error)) *Handle[T] {
	in := &intent{id: uuid.New(), snaps: make(map[cache.Key]cache.Snapshot)}
	c.store.Update(func(tx *cache.Tx) {
		for _, k := range views.all() {
			if !tx.Has(k) {
				continue
			}
			snap := tx.State(k)
			snap.Value = c.cloneValue(snap.Value)
			in.snaps[k] = snap
			in.keys = append(in.keys, k)
		}
		speculate(tx)
	})

	h := newHandle[T](in.id)
	go func(ctx context.Context) {
		result, err := remote(ctx)
		c.settle(in, err)
		h.settle(result, err)
	}(context.WithoutCancel(ctx))
	return h
}

func (c *Coordinator[T]) settle(in *intent, err error) {
	c.store.Update(func(tx *cache.Tx) {
		if err == nil {
			// The speculative value is superseded, not trusted: mark every
			// touched view for refresh from the authoritative response.
			for _, k := range in.keys {
				tx.MarkStale(k)
			}
			return
		}
		for _, k := range in.keys {
			if !tx.Has(k) {
				// Evicted while in flight; the next read refetches anyway.
				continue
			}
			live := tx.State(k)
			tx.Restore(k, in.snaps[k])
			if live.Stale {
				// A later intent already settled successfully and marked the
				// view for refetch. The restored snapshot predates that
				// mutation, so it must never read as fresh.
				tx.MarkStale(k)
			}
		}
	})
	if err != nil {
		c.log.Printf("mutation %s rolled back: %v", in.id, err)
	}
	in.snaps = nil
}

func (c *Coordinator[T]) applyEverywhere(tx *cache.Tx, entityID int, views Views, apply func(*T)) {
	if views.Detail != "" {
		if v, ok := tx.Get(views.Detail); ok {
			if ent, isEnt := v.(T); isEnt && ent.EntityID() == entityID {
				cl := ent.Clone()
				apply(&cl)
				tx.Put(views.Detail, cl)
			}
		}
	}
	for _, k := range views.Lists {
		v, ok := tx.Get(k)
		page, isPage := v.(api.Page[T])
		if !ok || !isPage {
			continue
		}
		touched := false
		items := make([]T, len(page.Items))
		for i, it := range page.Items {
			cl := it.Clone()
			if cl.EntityID() == entityID {
				apply(&cl)
				touched = true
			}
			items[i] = cl
		}
		if !touched {
			continue
		}
		page.Items = items
		tx.Put(k, page)
	}
}

func (c *Coordinator[T]) cloneValue(v any) any {
	switch val := v.(type) {
	case T:
		return val.Clone()
	case api.Page[T]:
		items := make([]T, len(val.Items))
		for i, it := range val.Items {
			items[i] = it.Clone()
		}
		val.Items = items
		return val
	default:
		return v
	}
}
