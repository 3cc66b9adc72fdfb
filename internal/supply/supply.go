package supply

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"farmdesk/internal/cache"
	"farmdesk/internal/schema"
)

// Kind is the supply entity's segment in the cache key space.
const Kind = "supply"

// Supply is a stock item (seed, fertilizer, fuel) without a server-enforced
// lifecycle; it still flows through the same gateway, cache and coordinator
// as the lifecycle-bearing entities.
type Supply struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Quantity     float64   `json:"quantity"`
	ReorderLevel float64   `json:"reorderLevel,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s Supply) EntityID() int { return s.ID }

func (s Supply) Clone() Supply { return s }

// LowStock reports whether the item has fallen to its reorder level.
func (s Supply) LowStock() bool {
	return s.ReorderLevel > 0 && s.Quantity <= s.ReorderLevel
}

type CreatePayload struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	ReorderLevel float64 `json:"reorderLevel,omitempty"`
}

func (p *CreatePayload) Validate() error {
	var ve schema.ValidationError
	if strings.TrimSpace(p.Name) == "" {
		ve.Add("name", "required")
	}
	if strings.TrimSpace(p.Unit) == "" {
		ve.Add("unit", "required")
	}
	if p.Quantity < 0 {
		ve.Add("quantity", "must not be negative")
	}
	if p.ReorderLevel < 0 {
		ve.Add("reorderLevel", "must not be negative")
	}
	return ve.Err()
}

type UpdatePayload struct {
	Name         *string  `json:"name,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	ReorderLevel *float64 `json:"reorderLevel,omitempty"`
}

func (p *UpdatePayload) Validate() error {
	var ve schema.ValidationError
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		ve.Add("name", "must not be blank")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		ve.Add("quantity", "must not be negative")
	}
	if p.ReorderLevel != nil && *p.ReorderLevel < 0 {
		ve.Add("reorderLevel", "must not be negative")
	}
	return ve.Err()
}

type ListQuery struct {
	Name string
	Page int
	Size int
}

func (q ListQuery) Filters() cache.Filters {
	f := cache.Filters{}
	if q.Name != "" {
		f["name"] = q.Name
	}
	if q.Page > 0 {
		f["page"] = strconv.Itoa(q.Page)
	}
	if q.Size > 0 {
		f["size"] = strconv.Itoa(q.Size)
	}
	return f
}

func (q ListQuery) Query() url.Values {
	v := url.Values{}
	for k, val := range q.Filters() {
		v.Set(k, val)
	}
	return v
}
