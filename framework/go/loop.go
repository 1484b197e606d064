package g

import (
	"context"
	"runtime"
	"sync"

	"github.com/fixkme/mapletimer/clock"
)

// ExpiryCb 时间轮到期回调, 在Loop协程里执行
type ExpiryCb func(tid int64, nowMs int64, data any)

// Loop 单协程事件循环, 计时状态只在这里修改
type Loop struct {
	*Go
	closeSig    chan struct{}
	done        chan struct{}
	isClosed    bool
	mutex       sync.RWMutex
	expiryCh    chan *clock.Expiry
	expiryCb    ExpiryCb
	beforeClose func()
}

func NewLoop(taskChSize, expiryChSize int) *Loop {
	return &Loop{
		Go:       NewGoChan(taskChSize),
		closeSig: make(chan struct{}),
		done:     make(chan struct{}),
		expiryCh: make(chan *clock.Expiry, expiryChSize),
	}
}

func (l *Loop) Init(expiryCb ExpiryCb, beforeClose func()) {
	l.expiryCb = expiryCb
	l.beforeClose = beforeClose
}

// ExpiryReceiver 交给时间轮的接收通道
func (l *Loop) ExpiryReceiver() chan<- *clock.Expiry {
	return l.expiryCh
}

// Done Run返回后关闭
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) Run() {
	defer l.onClose()

	for {
		select {
		case <-l.closeSig:
			return
		case cb := <-l.Go.ChanCb:
			l.Go.Exec(cb)
		case e := <-l.expiryCh:
			if l.expiryCb != nil {
				l.Go.Exec(func() { l.expiryCb(e.TimerId, e.NowMs, e.Data) })
			}
		}
	}
}

func (l *Loop) onClose() {
	defer close(l.done)
	if l.beforeClose != nil {
		l.Go.Exec(l.beforeClose)
	}
	// MustRunFunc可能持读锁阻塞在发送上, 拿写锁的同时继续消费
	for !l.mutex.TryLock() {
		select {
		case cb := <-l.Go.ChanCb:
			l.Go.Exec(cb)
		default:
			runtime.Gosched()
		}
	}
	l.Go.Close()
	l.mutex.Unlock()
	// 已提交的回调执行完, 等待结果的调用方不会卡住
	for cb := range l.Go.ChanCb {
		l.Go.Exec(cb)
	}
}

func (l *Loop) Close() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.isClosed {
		return
	}

	l.isClosed = true
	close(l.closeSig)
}

// SyncRunFunc 等待f执行完, 不能在Loop协程里调用
func (l *Loop) SyncRunFunc(f func()) (err error) {
	l.mutex.RLock()
	if l.isClosed {
		l.mutex.RUnlock()
		return ErrLoopClosed
	}

	errCh := l.Go.SubmitWithResult(f)
	l.mutex.RUnlock()
	return <-errCh
}

func (l *Loop) CtxRunFunc(ctx context.Context, f func()) (err error) {
	l.mutex.RLock()
	if l.isClosed {
		l.mutex.RUnlock()
		return ErrLoopClosed
	}

	errCh := l.Go.SubmitWithResult(f)
	l.mutex.RUnlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err = <-errCh:
		return err
	}
}

func (l *Loop) TryRunFunc(f func()) error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	if l.isClosed {
		return ErrLoopClosed
	}

	if !l.Go.TrySubmit(f) {
		return ErrGoChanFull
	}
	return nil
}

func (l *Loop) MustRunFunc(f func()) error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	if l.isClosed {
		return ErrLoopClosed
	}

	l.Go.MustSubmit(f)
	return nil
}
