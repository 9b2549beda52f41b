package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/bid_tracker/models"
)

type staticLoader struct {
	records []models.ProjectRecord
	loads   int
}

func (l *staticLoader) Records() []models.ProjectRecord {
	l.loads++
	return l.records
}

func deadlineAt(t time.Time) *time.Time {
	return &t
}

func TestDeadlineSweeper_Sweep(t *testing.T) {
	today := day(2025, 6, 10)
	loader := &staticLoader{records: []models.ProjectRecord{
		{ID: "LATE", Title: "Late", Status: models.StatusWriting, Deadline: deadlineAt(day(2025, 6, 8))},
		{ID: "SOON", Title: "Soon", Status: models.StatusDraft, Deadline: deadlineAt(day(2025, 6, 15))},
		{ID: "TODAY", Title: "Today", Status: models.StatusSubmitted, Deadline: deadlineAt(today)},
		{ID: "FAR", Title: "Far", Status: models.StatusDraft, Deadline: deadlineAt(day(2025, 7, 30))},
		{ID: "WON", Title: "Won", Status: models.StatusAwarded, Deadline: deadlineAt(day(2025, 6, 1))},
		{ID: "SHUT", Title: "Shut", Status: models.StatusClosed, Deadline: deadlineAt(day(2025, 6, 11))},
		{ID: "NONE", Title: "No deadline", Status: models.StatusDraft},
	}}

	sweeper := NewDeadlineSweeper(loader, 7)
	alerts := sweeper.Sweep(context.Background(), today)

	require.Equal(t, 1, loader.loads)
	require.Len(t, alerts, 3)

	require.Equal(t, "LATE", alerts[0].ProjectID)
	require.Equal(t, -2, alerts[0].DaysRemaining)
	require.True(t, alerts[0].Overdue)

	require.Equal(t, "TODAY", alerts[1].ProjectID)
	require.Zero(t, alerts[1].DaysRemaining)
	require.False(t, alerts[1].Overdue)

	require.Equal(t, "SOON", alerts[2].ProjectID)
	require.Equal(t, 5, alerts[2].DaysRemaining)
}

func TestDeadlineSweeper_NoRecords(t *testing.T) {
	sweeper := NewDeadlineSweeper(&staticLoader{}, 7)
	require.Empty(t, sweeper.Sweep(context.Background(), day(2025, 6, 10)))
}

func TestDeadlineSweeper_StartRejectsBadSchedule(t *testing.T) {
	sweeper := NewDeadlineSweeper(&staticLoader{}, 7)
	require.Error(t, sweeper.Start("not a schedule"))
	sweeper.Stop()
}

func TestDeadlineSweeper_StartStop(t *testing.T) {
	sweeper := NewDeadlineSweeper(&staticLoader{}, 7)
	require.NoError(t, sweeper.Start("0 0 8 * * *"))
	sweeper.Stop()
}
