package season

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"farmdesk/internal/cache"
	"farmdesk/internal/schema"
)

type CreatePayload struct {
	PlotID       int    `json:"plotId"`
	Name         string `json:"name"`
	PlannedStart string `json:"plannedStart,omitempty"`
	PlannedEnd   string `json:"plannedEnd,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (p *CreatePayload) Validate() error {
	var ve schema.ValidationError
	if p.PlotID <= 0 {
		ve.Add("plotId", "must be a positive id")
	}
	if strings.TrimSpace(p.Name) == "" {
		ve.Add("name", "required")
	}
	p.PlannedStart = schema.CheckDate(&ve, "plannedStart", p.PlannedStart)
	p.PlannedEnd = schema.CheckDate(&ve, "plannedEnd", p.PlannedEnd)
	if p.PlannedStart != "" && p.PlannedEnd != "" && p.PlannedEnd < p.PlannedStart {
		ve.Add("plannedEnd", "must not precede plannedStart")
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
	Name         *string `json:"name,omitempty"`
	PlannedStart *string `json:"plannedStart,omitempty"`
	PlannedEnd   *string `json:"plannedEnd,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (p *UpdatePayload) Validate() error {
	var ve schema.ValidationError
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		ve.Add("name", "must not be blank")
	}
	p.PlannedStart = schema.CheckDatePtr(&ve, "plannedStart", p.PlannedStart)
	p.PlannedEnd = schema.CheckDatePtr(&ve, "plannedEnd", p.PlannedEnd)
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

// StatusPayload requests a season transition. The optional dates are the
// transition's effective dates (start of an activated season, end of a
// completed one); the server decides whether the transition is legal.
type StatusPayload struct {
	Status      Status  `json:"status"`
	ActualStart *string `json:"actualStart,omitempty"`
	ActualEnd   *string `json:"actualEnd,omitempty"`
}

func (p *StatusPayload) Validate() error {
	var ve schema.ValidationError
	if _, err := ParseStatus(string(p.Status)); err != nil {
		ve.Add("status", err.Error())
	}
	p.ActualStart = schema.CheckDatePtr(&ve, "actualStart", p.ActualStart)
	p.ActualEnd = schema.CheckDatePtr(&ve, "actualEnd", p.ActualEnd)
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
	Status string
	Page   int
	Size   int
}

func (q ListQuery) Filters() cache.Filters {
	f := cache.Filters{}
	if q.Status != "" {
		f["status"] = q.Status
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
