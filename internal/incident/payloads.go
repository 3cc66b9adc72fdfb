package incident

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"farmdesk/internal/cache"
	"farmdesk/internal/schema"
)

type CreatePayload struct {
	SeasonID    int      `json:"seasonId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Severity    Severity `json:"severity"`
	OccurredAt  string   `json:"occurredAt"`
}

func (p *CreatePayload) Validate() error {
	var ve schema.ValidationError
	if p.SeasonID <= 0 {
		ve.Add("seasonId", "must be a positive id")
	}
	if strings.TrimSpace(p.Title) == "" {
		ve.Add("title", "required")
	}
	if _, err := ParseSeverity(string(p.Severity)); err != nil {
		ve.Add("severity", err.Error())
	}
	if p.OccurredAt == "" {
		ve.Add("occurredAt", "required")
	} else {
		p.OccurredAt = schema.CheckDate(&ve, "occurredAt", p.OccurredAt)
	}
	return ve.Err()
}

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

type UpdatePayload struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Severity    *Severity `json:"severity,omitempty"`
	OccurredAt  *string   `json:"occurredAt,omitempty"`
}

func (p *UpdatePayload) Validate() error {
	var ve schema.ValidationError
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		ve.Add("title", "must not be blank")
	}
	if p.Severity != nil {
		if _, err := ParseSeverity(string(*p.Severity)); err != nil {
			ve.Add("severity", err.Error())
		}
	}
	p.OccurredAt = schema.CheckDatePtr(&ve, "occurredAt", p.OccurredAt)
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

type StatusPayload struct {
	Status     Status  `json:"status"`
	ResolvedAt *string `json:"resolvedAt,omitempty"`
}

func (p *StatusPayload) Validate() error {
	var ve schema.ValidationError
	if _, err := ParseStatus(string(p.Status)); err != nil {
		ve.Add("status", err.Error())
	}
	p.ResolvedAt = schema.CheckDatePtr(&ve, "resolvedAt", p.ResolvedAt)
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

type ListQuery struct {
	Status   string
	Severity string
	Page     int
	Size     int
}

func (q ListQuery) Filters() cache.Filters {
	f := cache.Filters{}
	if q.Status != "" {
		f["status"] = q.Status
	}
	if q.Severity != "" {
		f["severity"] = q.Severity
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
