package incident

import (
	"fmt"
	"time"

	"farmdesk/internal/lifecycle"
)

// Kind is the incident entity's segment in the cache key space.
const Kind = "incident"

const parentKind = "season"

type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusInvestigating Status = "INVESTIGATING"
	StatusResolved      Status = "RESOLVED"
	StatusDismissed     Status = "DISMISSED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInvestigating, StatusResolved, StatusDismissed:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown incident status %q", s)
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown incident severity %q", s)
}

// Incident mirrors the backend's field-incident resource (pest outbreaks,
// equipment failures, weather damage) reported against a season.
type Incident struct {
	ID          int       `json:"id"`
	SeasonID    int       `json:"seasonId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    Severity  `json:"severity"`
	Status      Status    `json:"status"`
	OccurredAt  string    `json:"occurredAt"`
	ResolvedAt  *string   `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (i Incident) EntityID() int { return i.ID }

func (i Incident) Clone() Incident {
	out := i
	if i.ResolvedAt != nil {
		v := *i.ResolvedAt
		out.ResolvedAt = &v
	}
	return out
}

func (i Incident) Badge() lifecycle.Badge {
	switch i.Status {
	case StatusInvestigating:
		return lifecycle.Badge{Code: string(StatusInvestigating), Label: "Investigating", Tone: lifecycle.ToneInfo}
	case StatusResolved:
		return lifecycle.Badge{Code: string(StatusResolved), Label: "Resolved", Tone: lifecycle.ToneSuccess}
	case StatusDismissed:
		return lifecycle.Badge{Code: string(StatusDismissed), Label: "Dismissed", Tone: lifecycle.ToneNeutral}
	default:
		tone := lifecycle.ToneWarning
		if i.Severity == SeverityCritical {
			tone = lifecycle.ToneDanger
		}
		return lifecycle.Badge{Code: string(StatusOpen), Label: "Open", Tone: tone}
	}
}
