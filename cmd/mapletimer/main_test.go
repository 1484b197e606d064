package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/mapletimer/errs"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "maple")
	assert.Contains(t, out, "Farming 2m20s (alert), Pickup 25s")
	assert.Contains(t, out, "tomato")
}

func TestCountdownRejectsBadDuration(t *testing.T) {
	for _, arg := range []string{"0", "later"} {
		_, err := execute(t, "countdown", arg, "--log-level", "error")
		require.Error(t, err, arg)
		assert.True(t, errors.Is(err, errs.InvalidDuration), arg)
	}
	_, err := execute(t, "countdown", "--log-level", "error", "--", "-5")
	assert.True(t, errors.Is(err, errs.InvalidDuration))
}

func TestListenNeedsRedis(t *testing.T) {
	t.Setenv("MAPLETIMER_REDIS_ADDR", "")
	_, err := execute(t, "listen", "--log-level", "error")
	assert.True(t, errors.Is(err, errs.Config))
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "presets", "--log-level", "loud")
	assert.True(t, errors.Is(err, errs.Config))
}
