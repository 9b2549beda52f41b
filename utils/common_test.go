package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-09-30")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("2025-09-30T17:45:00+02:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("  ")
	require.NoError(t, err)
	require.Nil(t, d)

	_, err = ParseDate("30/09/2025")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "deadline", ve.Field)
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"Draft", "Pending Response"}, SplitList(" Draft, ,Pending Response ,"))
	require.Nil(t, SplitList(""))
}

func TestToApiError(t *testing.T) {
	require.Equal(t, 400, ToApiError(NewValidationError("title", "is required")).StatusCode)
	require.Equal(t, "RESOURCE_NOT_FOUND", ToApiError(ErrNotFound).ErrorCode)

	pe := &PersistenceError{Op: "save", Err: errors.New("disk full")}
	require.True(t, IsPersistenceError(pe))
	require.Equal(t, "PERSISTENCE_ERROR", ToApiError(pe).ErrorCode)
	require.Equal(t, 500, ToApiError(errors.New("boom")).StatusCode)
}
