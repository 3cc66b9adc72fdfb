package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"farmdesk/internal/lifecycle"
)

func TestTask_CloneIsDeep(t *testing.T) {
	season := 5
	qty := 2.5
	orig := Task{ID: 1, SeasonID: &season, Title: "a", Quantity: &qty}

	cl := orig.Clone()
	*cl.SeasonID = 9
	*cl.Quantity = 0

	assert.Equal(t, 5, *orig.SeasonID)
	assert.Equal(t, 2.5, *orig.Quantity)
}

func TestTask_BadgeMirrorsServerStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "DONE", Task{Status: StatusDone}.Badge(now).Code)
	assert.Equal(t, "IN_PROGRESS", Task{Status: StatusInProgress}.Badge(now).Code)
	assert.Equal(t, "CANCELLED", Task{Status: StatusCancelled}.Badge(now).Code)
	assert.Equal(t, "OVERDUE", Task{Status: StatusOverdue}.Badge(now).Code)
}

func TestTask_PendingPastDueRendersOverdue(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	past := Task{Status: StatusPending, DueDate: "2026-06-01"}
	assert.Equal(t, "OVERDUE", past.Badge(now).Code)
	assert.Equal(t, lifecycle.ToneDanger, past.Badge(now).Tone)
	// Derived at render time only; the stored status is untouched.
	assert.Equal(t, StatusPending, past.Status)

	today := Task{Status: StatusPending, DueDate: "2026-06-15"}
	assert.Equal(t, "PENDING", today.Badge(now).Code)

	future := Task{Status: StatusPending, DueDate: "2026-07-01"}
	assert.Equal(t, "PENDING", future.Badge(now).Code)

	noDue := Task{Status: StatusPending}
	assert.Equal(t, "PENDING", noDue.Badge(now).Code)
}

func TestTask_DonePastDueIsNotOverdue(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	done := Task{Status: StatusDone, DueDate: "2026-06-01"}
	assert.Equal(t, "DONE", done.Badge(now).Code)
}
