package task

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"farmdesk/internal/cache"
	"farmdesk/internal/schema"
)

// CreatePayload carries the client-writable fields of a new task. Server-only
// fields (id, status, createdAt) have no place here.
type CreatePayload struct {
	SeasonID *int     `json:"seasonId,omitempty"`
	Title    string   `json:"title"`
	Notes    string   `json:"notes,omitempty"`
	DueDate  string   `json:"dueDate,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
}

func (p *CreatePayload) Validate() error {
	var ve schema.ValidationError
	if strings.TrimSpace(p.Title) == "" {
		ve.Add("title", "required")
	}
	p.DueDate = schema.CheckDate(&ve, "dueDate", p.DueDate)
	if p.SeasonID != nil && *p.SeasonID <= 0 {
		ve.Add("seasonId", "must be a positive id")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		ve.Add("quantity", "must not be negative")
	}
	return ve.Err()
}

// ParseCreate validates an untyped payload into a CreatePayload, reporting
// every offending field rather than the first.
func ParseCreate(raw json.RawMessage) (CreatePayload, error) {
	var p CreatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		var ve schema.ValidationError
		ve.Add("body", "malformed json: "+err.Error())
		return CreatePayload{}, &ve
	}
	if err := p.Validate(); err != nil {
		return CreatePayload{}, err
	}
	return p, nil
}

// UpdatePayload edits descriptive fields. Nil means "leave unchanged"; status
// is never writable here, only through StatusPayload.
type UpdatePayload struct {
	Title    *string  `json:"title,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	DueDate  *string  `json:"dueDate,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
}

func (p *UpdatePayload) Validate() error {
	var ve schema.ValidationError
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		ve.Add("title", "must not be blank")
	}
	p.DueDate = schema.CheckDatePtr(&ve, "dueDate", p.DueDate)
	if p.Quantity != nil && *p.Quantity < 0 {
		ve.Add("quantity", "must not be negative")
	}
	return ve.Err()
}

func ParseUpdate(raw json.RawMessage) (UpdatePayload, error) {
	var p UpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		var ve schema.ValidationError
		ve.Add("body", "malformed json: "+err.Error())
		return UpdatePayload{}, &ve
	}
	if err := p.Validate(); err != nil {
		return UpdatePayload{}, err
	}
	return p, nil
}

// StatusPayload requests a lifecycle transition. Legality of the transition
// is the server's call; the payload only checks that the target status is a
// known value and the dates are well-formed.
type StatusPayload struct {
	Status      Status  `json:"status"`
	StartedAt   *string `json:"startedAt,omitempty"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

func (p *StatusPayload) Validate() error {
	var ve schema.ValidationError
	if _, err := ParseStatus(string(p.Status)); err != nil {
		ve.Add("status", err.Error())
	}
	p.StartedAt = schema.CheckDatePtr(&ve, "startedAt", p.StartedAt)
	p.CompletedAt = schema.CheckDatePtr(&ve, "completedAt", p.CompletedAt)
	return ve.Err()
}

func ParseStatusUpdate(raw json.RawMessage) (StatusPayload, error) {
	var p StatusPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		var ve schema.ValidationError
		ve.Add("body", "malformed json: "+err.Error())
		return StatusPayload{}, &ve
	}
	if err := p.Validate(); err != nil {
		return StatusPayload{}, err
	}
	return p, nil
}

// ListQuery scopes a task list view.
type ListQuery struct {
	Status    string
	DueBefore string
	DueAfter  string
	Page      int
	Size      int
}

// Filters derives the cache key scope. Identical queries produce identical
// filters regardless of how they were assembled.
func (q ListQuery) Filters() cache.Filters {
	f := cache.Filters{}
	if q.Status != "" {
		f["status"] = q.Status
	}
	if q.DueBefore != "" {
		f["dueBefore"] = q.DueBefore
	}
	if q.DueAfter != "" {
		f["dueAfter"] = q.DueAfter
	}
	if q.Page > 0 {
		f["page"] = strconv.Itoa(q.Page)
	}
	if q.Size > 0 {
		f["size"] = strconv.Itoa(q.Size)
	}
	return f
}

// Query renders the wire form of the list scope.
func (q ListQuery) Query() url.Values {
	v := url.Values{}
	for k, val := range q.Filters() {
		v.Set(k, val)
	}
	return v
}
