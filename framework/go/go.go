package g

import (
	"errors"
	"runtime/debug"
	"sync/atomic"

	"github.com/fixkme/mapletimer/mlog"
)

var (
	ErrGoChanFull = errors.New("go chan is full")
	ErrLoopClosed = errors.New("loop is closed")
)

const (
	minChanSize = 64
	maxChanSize = 102400
)

// Go 回调队列, 回调只在消费协程里执行
type Go struct {
	ChanCb       chan func()
	panicHandler func(r any)
	closed       atomic.Bool
}

func NewGoChan(size int) *Go {
	if size < minChanSize {
		size = minChanSize
	} else if size > maxChanSize {
		size = maxChanSize
	}

	g := new(Go)
	g.ChanCb = make(chan func(), size)
	g.panicHandler = func(r any) {
		mlog.Errorf("go run panic: %v\n%s", r, debug.Stack())
	}
	return g
}

func (g *Go) SetPanicHandler(f func(r any)) {
	if f != nil {
		g.panicHandler = f
	}
}

func (g *Go) Close() {
	if g.closed.CompareAndSwap(false, true) {
		close(g.ChanCb)
	}
}

// SubmitWithResult 回调执行完或失败时errCh收到结果
func (g *Go) SubmitWithResult(f func()) (errCh chan error) {
	errCh = make(chan error, 1)
	call := func() {
		defer close(errCh)
		f()
	}
	select {
	case g.ChanCb <- call:
	default:
		errCh <- ErrGoChanFull
	}
	return
}

func (g *Go) TrySubmit(f func()) (ok bool) {
	select {
	case g.ChanCb <- f:
		return true
	default:
		return false
	}
}

func (g *Go) MustSubmit(f func()) {
	g.ChanCb <- f
}

func (g *Go) Exec(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			g.panicHandler(r)
		}
	}()

	cb()
}
