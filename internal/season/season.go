package season

import (
	"fmt"
	"time"

	"farmdesk/internal/lifecycle"
)

// Kind is the season entity's segment in the cache key space.
const Kind = "season"

// parentKind scopes plot-bound list views.
const parentKind = "plot"

type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusArchived  Status = "ARCHIVED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPlanned, StatusActive, StatusCompleted, StatusCancelled, StatusArchived:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown season status %q", s)
}

// Season mirrors the backend's growing-season resource. actualStart and
// actualEnd are set exclusively by transition operations server-side.
type Season struct {
	ID           int       `json:"id"`
	PlotID       int       `json:"plotId"`
	Name         string    `json:"name"`
	Status       Status    `json:"status"`
	PlannedStart string    `json:"plannedStart,omitempty"`
	PlannedEnd   string    `json:"plannedEnd,omitempty"`
	ActualStart  *string   `json:"actualStart,omitempty"`
	ActualEnd    *string   `json:"actualEnd,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s Season) EntityID() int { return s.ID }

func (s Season) Clone() Season {
	out := s
	out.ActualStart = clonePtr(s.ActualStart)
	out.ActualEnd = clonePtr(s.ActualEnd)
	return out
}

// Badge projects the display state from the authoritative status value.
func (s Season) Badge() lifecycle.Badge {
	switch s.Status {
	case StatusActive:
		return lifecycle.Badge{Code: string(StatusActive), Label: "Active", Tone: lifecycle.ToneInfo}
	case StatusCompleted:
		return lifecycle.Badge{Code: string(StatusCompleted), Label: "Completed", Tone: lifecycle.ToneSuccess}
	case StatusCancelled:
		return lifecycle.Badge{Code: string(StatusCancelled), Label: "Cancelled", Tone: lifecycle.ToneNeutral}
	case StatusArchived:
		return lifecycle.Badge{Code: string(StatusArchived), Label: "Archived", Tone: lifecycle.ToneNeutral}
	default:
		return lifecycle.Badge{Code: string(StatusPlanned), Label: "Planned", Tone: lifecycle.ToneNeutral}
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
