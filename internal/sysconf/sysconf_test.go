package sysconf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseTimeStatus reads the key=value shape timedatectl emits.
func TestParseTimeStatus(t *testing.T) {
	t.Parallel()

	output := `Timezone=Europe/Amsterdam
LocalRTC=no
CanNTP=yes
NTP=yes
NTPSynchronized=yes
TimeUSec=Mon 2024-01-01 07:00:00 CET
`

	status := parseTimeStatus(output)
	require.Equal(t, "Europe/Amsterdam", status.Timezone)
	require.True(t, status.NTPEnabled)
	require.True(t, status.Synchronized)

	status = parseTimeStatus("Timezone=UTC\nNTP=no\nNTPSynchronized=no\n")
	require.Equal(t, "UTC", status.Timezone)
	require.False(t, status.NTPEnabled)
	require.False(t, status.Synchronized)

	// Garbage in, zero value out.
	require.Equal(t, TimeStatus{}, parseTimeStatus("no equals signs here"))
}

// TestRunReportsFailure folds a missing binary into a failed Result.
func TestRunReportsFailure(t *testing.T) {
	t.Parallel()

	result := run(context.Background(), "definitely-not-a-real-command-9000")
	require.False(t, result.OK)
	require.NotEmpty(t, result.Message)
}

// TestRunReportsSuccess folds a zero exit into a passing Result.
func TestRunReportsSuccess(t *testing.T) {
	t.Parallel()

	result := run(context.Background(), "true")
	require.True(t, result.OK)
	require.NotEmpty(t, result.Message)
}
