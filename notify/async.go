package notify

import (
	"runtime/debug"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/mlog"
	"github.com/fixkme/mapletimer/timer"
)

const (
	defaultPoolSize     = 4
	defaultCloseTimeout = 5 * time.Second
)

type antsLogger struct{}

func (antsLogger) Printf(format string, args ...any) {
	mlog.Debugf("ants: "+format, args...)
}

// Async 在协程池里执行下游通知, Notify立即返回. 池满时丢弃这次提醒.
type Async struct {
	next         timer.Notifier
	pool         *ants.Pool
	closeTimeout time.Duration
}

func NewAsync(next timer.Notifier, size int, closeTimeout time.Duration) (*Async, error) {
	if size <= 0 {
		size = defaultPoolSize
	}
	if closeTimeout <= 0 {
		closeTimeout = defaultCloseTimeout
	}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithLogger(antsLogger{}),
		ants.WithPanicHandler(func(r any) {
			mlog.Errorf("notify panic: %v\n%s", r, debug.Stack())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Async{next: next, pool: pool, closeTimeout: closeTimeout}, nil
}

func (a *Async) Notify(e timer.Event) error {
	err := a.pool.Submit(func() {
		if err := a.next.Notify(e); err != nil {
			mlog.Warnf("notify %s(%s) failed: %v", e.Name, e.TimerID, err)
		}
	})
	if err != nil {
		return errs.NotifyDropped.Printf("%s", e.Name).Wrap(err)
	}
	return nil
}

// Running 正在执行的通知数
func (a *Async) Running() int {
	return a.pool.Running()
}

// Close 等正在播放的提示音结束, 最多closeTimeout
func (a *Async) Close() error {
	if n := a.Running(); n > 0 {
		mlog.Infof("waiting for %d notification(s) to finish", n)
	}
	err := a.pool.ReleaseTimeout(a.closeTimeout)
	if c, ok := a.next.(interface{ Close() error }); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
