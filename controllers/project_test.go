package controllers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/bid_tracker/models"
)

func strPtr(s string) *string { return &s }

func TestBuildPatch(t *testing.T) {
	patch, err := buildPatch(models.UpdateProjectRequest{
		Title:    strPtr("  New title "),
		Deadline: strPtr("2025-10-01"),
	})
	require.NoError(t, err)
	require.Equal(t, "New title", *patch.Title)
	require.Nil(t, patch.Client)
	require.NotNil(t, patch.Deadline)
	require.False(t, patch.ClearDeadline)

	patch, err = buildPatch(models.UpdateProjectRequest{Deadline: strPtr("")})
	require.NoError(t, err)
	require.True(t, patch.ClearDeadline)
	require.Nil(t, patch.Deadline)

	patch, err = buildPatch(models.UpdateProjectRequest{})
	require.NoError(t, err)
	require.False(t, patch.ClearDeadline)
	require.Nil(t, patch.Deadline)

	_, err = buildPatch(models.UpdateProjectRequest{Deadline: strPtr("soon")})
	require.Error(t, err)
}

func TestParseStatuses(t *testing.T) {
	require.Nil(t, parseStatuses(""))
	require.Equal(t, []models.Status{models.StatusDraft, models.StatusPendingResponse}, parseStatuses("Draft,Pending Response"))
}
