//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/artdex/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// processRunning checks for pid with signal 0. On Unix FindProcess always
// succeeds, so the signal is the real existence check.
func processRunning(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

func TestFetcher_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	pid := fetcher.LauncherPID()
	require.NotZero(t, pid, "launcher PID should be set")
	require.True(t, processRunning(pid), "launcher should be running before Close()")

	require.NoError(t, fetcher.Close())

	// Give the OS a moment to reap the process.
	time.Sleep(100 * time.Millisecond)

	assert.False(t, processRunning(pid), "launcher should be gone after Close()")
}
