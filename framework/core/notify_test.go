package core

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/mapletimer/audio"
	"github.com/fixkme/mapletimer/framework/config"
	"github.com/fixkme/mapletimer/timer"
)

func TestNewPlayer(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, audio.Silent, NewPlayer(&config.SoundConfig{Mute: true}, &out))

	p := NewPlayer(&config.SoundConfig{}, &out)
	require.IsType(t, &audio.Bell{}, p)
	require.NoError(t, p.Play())
	assert.Equal(t, "\a", out.String())

	missing := filepath.Join(t.TempDir(), "missing.mp3")
	assert.IsType(t, &audio.Bell{}, NewPlayer(&config.SoundConfig{SoundFile: missing}, &out))
}

func TestNewNotifierBell(t *testing.T) {
	var out bytes.Buffer
	conf := config.Default()
	n, err := NewNotifier(context.Background(), conf, &out)
	require.NoError(t, err)

	require.NoError(t, n.Notify(timer.Event{TimerID: "t1", Name: "Farming", Duration: 140 * time.Second, At: time.Now(), Round: 1}))
	// Close等协程池里的提示音结束
	require.NoError(t, n.Close())
	assert.Equal(t, "\a", out.String())
}

func TestNewNotifierRedisUnreachable(t *testing.T) {
	conf := config.Default()
	conf.RedisAddr = "127.0.0.1:1"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewNotifier(ctx, conf, &bytes.Buffer{})
	assert.Error(t, err)
}
