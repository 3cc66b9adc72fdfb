package task

import (
	"fmt"
	"time"

	"farmdesk/internal/lifecycle"
)

// Kind is the task entity's segment in the cache key space.
const Kind = "task"

// parentKind scopes season-bound list views.
const parentKind = "season"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusOverdue    Status = "OVERDUE"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus rejects unknown values instead of defaulting. The server owns
// the transition graph; the client only mirrors the values it declares.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusDone, StatusOverdue, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Task mirrors the backend's task resource. The id, status and createdAt
// fields are server-assigned; the client never computes them.
type Task struct {
	ID          int       `json:"id"`
	SeasonID    *int      `json:"seasonId,omitempty"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes,omitempty"`
	Status      Status    `json:"status"`
	DueDate     string    `json:"dueDate,omitempty"`
	StartedAt   *string   `json:"startedAt,omitempty"`
	CompletedAt *string   `json:"completedAt,omitempty"`
	Quantity    *float64  `json:"quantity,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t Task) EntityID() int { return t.ID }

// Clone deep-copies the task so cached snapshots never share pointers with
// live views.
func (t Task) Clone() Task {
	out := t
	out.SeasonID = clonePtr(t.SeasonID)
	out.StartedAt = clonePtr(t.StartedAt)
	out.CompletedAt = clonePtr(t.CompletedAt)
	out.Quantity = clonePtr(t.Quantity)
	return out
}

// Badge projects the display state from the authoritative status. A pending
// task past its due date renders as overdue without the client ever storing
// an OVERDUE status it did not receive.
func (t Task) Badge(now time.Time) lifecycle.Badge {
	switch t.Status {
	case StatusInProgress:
		return lifecycle.Badge{Code: string(StatusInProgress), Label: "In progress", Tone: lifecycle.ToneInfo}
	case StatusDone:
		return lifecycle.Badge{Code: string(StatusDone), Label: "Done", Tone: lifecycle.ToneSuccess}
	case StatusCancelled:
		return lifecycle.Badge{Code: string(StatusCancelled), Label: "Cancelled", Tone: lifecycle.ToneNeutral}
	case StatusOverdue:
		return lifecycle.Badge{Code: string(StatusOverdue), Label: "Overdue", Tone: lifecycle.ToneDanger}
	default:
		if lifecycle.PastDue(t.DueDate, now) {
			return lifecycle.Badge{Code: string(StatusOverdue), Label: "Overdue", Tone: lifecycle.ToneDanger}
		}
		return lifecycle.Badge{Code: string(StatusPending), Label: "Pending", Tone: lifecycle.ToneNeutral}
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
