package workspace

import (
	"context"
	"errors"
	"log"
	"time"

	"farmdesk/internal/api"
	"farmdesk/internal/cache"
	"farmdesk/internal/config"
	"farmdesk/internal/incident"
	"farmdesk/internal/season"
	"farmdesk/internal/supply"
	"farmdesk/internal/task"
)

// Client is one user session against the farm backend: a single cache store
// shared by all entity services. Build one per session; nothing here is a
// package-level singleton.
type Client struct {
	Seasons   *season.Service
	Tasks     *task.Service
	Incidents *incident.Service
	Supplies  *supply.Service

	store *cache.Store
	log   *log.Logger
}

type Options struct {
	Config *config.Config
	Logger *log.Logger
}

func New(opts Options) (*Client, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	store := cache.New(cache.Options{
		StaleAfter: opts.Config.StaleAfter(),
		EvictAfter: opts.Config.EvictAfter(),
	})
	client := api.NewClient(api.ClientOptions{
		BaseURL: opts.Config.API.BaseURL,
		Timeout: opts.Config.Timeout(),
		Logger:  opts.Logger,
	})

	return &Client{
		Seasons:   season.NewService(client, store, opts.Logger),
		Tasks:     task.NewService(client, store, opts.Logger),
		Incidents: incident.NewService(client, store, opts.Logger),
		Supplies:  supply.NewService(client, store, opts.Logger),
		store:     store,
		log:       opts.Logger,
	}, nil
}

// Cache exposes the session store, mainly so callers can invalidate view
// groups explicitly.
func (c *Client) Cache() *cache.Store { return c.store }

// StartEvictor drops idle views on an interval until ctx is cancelled.
func (c *Client) StartEvictor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.store.EvictIdle(); n > 0 {
					c.log.Printf("cache: evicted %d idle views", n)
				}
			}
		}
	}()
}
