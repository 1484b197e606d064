// Package notify 到期事件的下游: 提示音, 日志, 可选的redis广播.
package notify

import (
	"go.uber.org/multierr"

	"github.com/fixkme/mapletimer/audio"
	"github.com/fixkme/mapletimer/mlog"
	"github.com/fixkme/mapletimer/timer"
)

// Notifier 可关闭的timer.Notifier
type Notifier interface {
	timer.Notifier
	Close() error
}

// Sound 播放提示音, 阻塞到播完, 一般放在Async后面
type Sound struct {
	player audio.Player
}

func NewSound(player audio.Player) *Sound {
	return &Sound{player: player}
}

func (s *Sound) Notify(e timer.Event) error {
	return s.player.Play()
}

func (s *Sound) Close() error { return nil }

// Log 写日志
type Log struct{}

func (Log) Notify(e timer.Event) error {
	if e.Round > 0 {
		mlog.Noticef("%s elapsed after %v (round %d)", e.Name, e.Duration, e.Round)
	} else {
		mlog.Noticef("%s elapsed after %v", e.Name, e.Duration)
	}
	return nil
}

func (Log) Close() error { return nil }

// Multi 依次通知每一个, 合并错误
type Multi []timer.Notifier

func (m Multi) Notify(e timer.Event) (err error) {
	for _, n := range m {
		err = multierr.Append(err, n.Notify(e))
	}
	return
}

func (m Multi) Close() (err error) {
	for i := len(m) - 1; i >= 0; i-- {
		if c, ok := m[i].(interface{ Close() error }); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return
}
