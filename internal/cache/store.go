package cache

import (
	"sync"
	"time"
)

const (
	DefaultStaleAfter = 30 * time.Second
	DefaultEvictAfter = 10 * time.Minute
)

// Store holds every cached view of one client session. It is created
// explicitly and passed by reference, never a package-level singleton, so
// tests can run isolated caches side by side.
type Store struct {
	mu         sync.RWMutex
	views      map[Key]*view
	staleAfter time.Duration
	evictAfter time.Duration
	now        func() time.Time
}

type view struct {
	value      any
	fetchedAt  time.Time
	lastAccess time.Time
	stale      bool
}

type Options struct {
	StaleAfter time.Duration // refetch window for reads
	EvictAfter time.Duration // inactivity window before a view is dropped
	Now        func() time.Time
}

func New(opts Options) *Store {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.EvictAfter <= 0 {
		opts.EvictAfter = DefaultEvictAfter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		views:      make(map[Key]*view),
		staleAfter: opts.StaleAfter,
		evictAfter: opts.EvictAfter,
		now:        opts.Now,
	}
}

// Get returns the cached value whether or not it is still fresh.
func (s *Store) Get(k Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[k]
	if !ok {
		return nil, false
	}
	v.lastAccess = s.now()
	return v.value, true
}

// Fresh returns the cached value only if it is within its staleness window
// and has not been marked for refresh.
func (s *Store) Fresh(k Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[k]
	if !ok || v.stale || s.now().Sub(v.fetchedAt) > s.staleAfter {
		return nil, false
	}
	v.lastAccess = s.now()
	return v.value, true
}

func (s *Store) Put(k Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(k, value)
}

func (s *Store) MarkStale(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[k]; ok {
		v.stale = true
	}
}

// InvalidatePrefix marks every view under prefix for refresh.
func (s *Store) InvalidatePrefix(prefix Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.views {
		if k.HasPrefix(prefix) {
			v.stale = true
		}
	}
}

func (s *Store) Delete(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, k)
}

// Keys lists every cached key under prefix.
func (s *Store) Keys(prefix Key) []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Key
	for k := range s.views {
		if k.HasPrefix(prefix) {
			out = append(out, k)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// EvictIdle drops views that have not been read or written within the
// inactivity window. Returns how many were dropped.
func (s *Store) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.evictAfter)
	n := 0
	for k, v := range s.views {
		if v.lastAccess.Before(cutoff) {
			delete(s.views, k)
			n++
		}
	}
	return n
}

// Update runs fn while holding the store lock, so a multi-view
// read-modify-write (snapshot plus speculative write) is observed by readers
// either fully applied or not at all.
func (s *Store) Update(fn func(tx *Tx)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Tx{s: s})
}

func (s *Store) put(k Key, value any) {
	now := s.now()
	s.views[k] = &view{value: value, fetchedAt: now, lastAccess: now}
}

// Snapshot is the verbatim saved state of one view, including its freshness
// metadata, so restoration reproduces the pre-mutation view exactly.
type Snapshot struct {
	Present   bool
	Value     any
	FetchedAt time.Time
	Stale     bool
}

// Tx is a view of the store inside an Update call. It must not escape fn.
type Tx struct {
	s *Store
}

func (tx *Tx) Has(k Key) bool {
	_, ok := tx.s.views[k]
	return ok
}

func (tx *Tx) Get(k Key) (any, bool) {
	v, ok := tx.s.views[k]
	if !ok {
		return nil, false
	}
	return v.value, true
}

func (tx *Tx) Put(k Key, value any) {
	tx.s.put(k, value)
}

func (tx *Tx) MarkStale(k Key) {
	if v, ok := tx.s.views[k]; ok {
		v.stale = true
	}
}

func (tx *Tx) Delete(k Key) {
	delete(tx.s.views, k)
}

func (tx *Tx) Keys(prefix Key) []Key {
	var out []Key
	for k := range tx.s.views {
		if k.HasPrefix(prefix) {
			out = append(out, k)
		}
	}
	return out
}

// State captures a view's current metadata. The value is returned as-is; the
// caller is responsible for deep-copying it before holding onto it.
func (tx *Tx) State(k Key) Snapshot {
	v, ok := tx.s.views[k]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{Present: true, Value: v.value, FetchedAt: v.fetchedAt, Stale: v.stale}
}

// Restore overwrites the view with a previously captured snapshot. Restoring
// the same snapshot twice is a no-op the second time.
func (tx *Tx) Restore(k Key, snap Snapshot) {
	if !snap.Present {
		delete(tx.s.views, k)
		return
	}
	tx.s.views[k] = &view{
		value:      snap.Value,
		fetchedAt:  snap.FetchedAt,
		lastAccess: tx.s.now(),
		stale:      snap.Stale,
	}
}
