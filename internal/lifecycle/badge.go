package lifecycle

import (
	"time"

	"farmdesk/internal/schema"
)

// Tone hints how a badge should render.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Badge is the UI-facing projection of an entity's lifecycle status. It is
// derived read-only from the server-sent status value; the client never
// invents a status the server has not declared.
type Badge struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// PastDue reports whether a due date lies strictly before today. It is
// computed at render time from two already-authoritative fields (status and
// due date) and never stored back into the entity.
func PastDue(dueDate string, now time.Time) bool {
	if dueDate == "" {
		return false
	}
	due, err := time.Parse(schema.DateLayout, dueDate)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
