package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAssignmentIsAvailable(t *testing.T) {
	now := time.Now()

	open := Assignment{DueDate: now.Add(7 * 24 * time.Hour)}
	require.True(t, open.IsAvailable(now), "no window means always available")

	future := now.Add(24 * time.Hour)
	notYet := Assignment{DueDate: now.Add(7 * 24 * time.Hour), AvailableFrom: &future}
	require.False(t, notYet.IsAvailable(now))

	past := now.Add(-24 * time.Hour)
	closed := Assignment{DueDate: now.Add(7 * 24 * time.Hour), AvailableUntil: &past}
	require.False(t, closed.IsAvailable(now))

	from := now.Add(-time.Hour)
	until := now.Add(time.Hour)
	window := Assignment{DueDate: now.Add(7 * 24 * time.Hour), AvailableFrom: &from, AvailableUntil: &until}
	require.True(t, window.IsAvailable(now))
}

func TestAssignmentIsOverdue(t *testing.T) {
	now := time.Now()

	require.False(t, Assignment{DueDate: now.Add(7 * 24 * time.Hour)}.IsOverdue(now))
	require.True(t, Assignment{DueDate: now.Add(-24 * time.Hour)}.IsOverdue(now))
}
