package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/bid_tracker/models"
)

func TestBuildDashboard_SingleProject(t *testing.T) {
	records := []models.ProjectRecord{
		{ID: "VW0000000001", Title: "Valley Water", Client: "Valley Water", Status: models.StatusWriting, Value: 50000, CreatedDate: day(2025, 6, 1)},
	}

	got := BuildDashboard(records, models.DefaultStatuses, DashboardQuery{})

	require.Equal(t, 1, got.ProjectCount)
	assert.InDelta(t, 50000, got.PortfolioValue, 1e-9)
	require.Equal(t, map[models.Status]int{models.StatusWriting: 1}, got.CountByStatus)
	require.Equal(t, []models.StatusBreakdown{{Status: models.StatusWriting, Count: 1, Value: 50000}}, got.Breakdown)
	require.Equal(t, records, got.Projects)
	require.Equal(t, records, got.RecentProjects)
}

func TestBuildDashboard_FiltersOnlyTheList(t *testing.T) {
	records := fixtures()

	got := BuildDashboard(records, models.DefaultStatuses, DashboardQuery{
		Statuses: []models.Status{models.StatusDraft},
		Search:   "river",
	})

	require.Equal(t, 3, got.ProjectCount)
	assert.InDelta(t, 62800.5, got.PortfolioValue, 1e-9)
	require.Equal(t, []string{"RIVER0000003"}, ids(got.Projects))
	require.Len(t, got.RecentProjects, 3)
}

func TestBuildDashboard_RecentLimit(t *testing.T) {
	records := fixtures()

	got := BuildDashboard(records, nil, DashboardQuery{Recent: 1})
	require.Equal(t, []string{"CITY00000002"}, ids(got.RecentProjects))

	got = BuildDashboard(records, nil, DashboardQuery{Recent: -1})
	require.Empty(t, got.RecentProjects)
}

func TestBuildDashboard_BreakdownOrder(t *testing.T) {
	records := []models.ProjectRecord{
		{ID: "1", Status: models.StatusSubmitted, Value: 10},
		{ID: "2", Status: "Legacy", Value: 1},
		{ID: "3", Status: models.StatusDraft, Value: 5},
		{ID: "4", Status: "Archived", Value: 2},
		{ID: "5", Status: models.StatusDraft, Value: 5},
	}

	got := BuildDashboard(records, models.DefaultStatuses, DashboardQuery{})

	var order []models.Status
	for _, b := range got.Breakdown {
		order = append(order, b.Status)
	}
	require.Equal(t, []models.Status{models.StatusDraft, models.StatusSubmitted, "Archived", "Legacy"}, order)
	require.Equal(t, 2, got.Breakdown[0].Count)
	assert.InDelta(t, 10, got.Breakdown[0].Value, 1e-9)
}

func TestBuildDashboard_Empty(t *testing.T) {
	got := BuildDashboard(nil, models.DefaultStatuses, DashboardQuery{})

	require.Zero(t, got.ProjectCount)
	require.Zero(t, got.PortfolioValue)
	require.Empty(t, got.CountByStatus)
	require.Empty(t, got.Breakdown)
	require.Empty(t, got.Projects)
	require.Empty(t, got.RecentProjects)
}
