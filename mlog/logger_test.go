package mlog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFilter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(NewZapLogger(zap.New(core), WarnLevel))
	defer SetLogger(nil)

	Info("hidden")
	Debugf("hidden %d", 1)
	Warnf("alert %s", "Farming")
	Error("boom")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "alert Farming", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[1].Message)
}

func TestTraceMapsToDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(NewZapLogger(zap.New(core), TraceLevel))
	defer SetLogger(nil)

	Tracef("tick %dms", 100)
	Noticef("round %d", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
}

func TestNilLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		Info("x")
		Errorf("y %d", 1)
		Sync()
	})
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"fatal": FatalLevel, "ERROR": ErrorLevel, "warning": WarnLevel,
		"notice": NoticeLevel, " info ": InfoLevel, "debug": DebugLevel, "trace": TraceLevel,
	} {
		got, ok := ParseLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	got, ok := ParseLevel("loud")
	assert.False(t, ok)
	assert.Equal(t, InfoLevel, got)
	assert.Equal(t, "warn", WarnLevel.String())
}

func TestDefaultLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	require.NoError(t, UseDefaultLogger(ctx, wg, dir, "mapletimer", InfoLevel, false))
	defer SetLogger(nil)

	Infof("phase %s elapsed", "Farming")
	cancel()
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "mapletimer.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "phase Farming elapsed")
}
