// Package audio 播放提示音.
package audio

import (
	"io"
	"os"
	"sync"

	"github.com/fixkme/mapletimer/mlog"
)

// Player 播放一次提示音, 播完才返回
type Player interface {
	Play() error
}

// Bell 终端响铃
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	if w == nil {
		w = os.Stdout
	}
	return &Bell{w: w}
}

func (b *Bell) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.w.Write([]byte{'\a'})
	return err
}

// Fallback 主播放器失败时换备用的
type Fallback struct {
	Primary   Player
	Secondary Player
}

func (f Fallback) Play() error {
	err := f.Primary.Play()
	if err == nil || f.Secondary == nil {
		return err
	}
	mlog.Warnf("audio primary player failed, falling back: %v", err)
	return f.Secondary.Play()
}

type silent struct{}

func (silent) Play() error { return nil }

// Silent 静音
var Silent Player = silent{}
