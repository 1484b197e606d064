// Package timer 倒计时核心. Timer倒数一个时长, 归零时通过Notifier发出提醒.
// Timer不是并发安全的, 只能由一个循环协程持有并调用Tick推进.
package timer

import (
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/mlog"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateElapsed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateElapsed:
		return "elapsed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event 计时到期时交给Notifier
type Event struct {
	TimerID  string
	Name     string
	Duration time.Duration
	At       time.Time
	Round    int // 所在轮次, 不在Cycle里为0
}

// Notifier 到期提醒(播放声音等), 实现要尽快返回, 耗时操作自己开协程
type Notifier interface {
	Notify(Event) error
}

type NotifierFunc func(Event) error

func (f NotifierFunc) Notify(e Event) error {
	return f(e)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) error { return nil }

// Nop 丢弃所有提醒
var Nop Notifier = nopNotifier{}

type Timer struct {
	id        string
	name      string
	duration  time.Duration
	remaining time.Duration
	state     State
	notifier  Notifier
}

// New 创建空闲的计时器, notifier为nil时到期不提醒
func New(name string, notifier Notifier) *Timer {
	if notifier == nil {
		notifier = Nop
	}
	return &Timer{
		id:       xid.New().String(),
		name:     name,
		notifier: notifier,
	}
}

func (t *Timer) ID() string               { return t.id }
func (t *Timer) Name() string             { return t.name }
func (t *Timer) Duration() time.Duration  { return t.duration }
func (t *Timer) Remaining() time.Duration { return t.remaining }
func (t *Timer) State() State             { return t.state }
func (t *Timer) Running() bool            { return t.state == StateRunning }

// Start 开始倒计时, 空闲或已到期的可以再次启动, 运行中的要先Cancel
func (t *Timer) Start(d time.Duration) error {
	if d <= 0 {
		return errs.InvalidDuration.Printf("%s: %v", t.name, d)
	}
	if t.state == StateRunning {
		return errs.AlreadyRunning.Printf("%s", t.name)
	}
	t.duration = d
	t.remaining = d
	t.state = StateRunning
	return nil
}

// Tick 扣减剩余时间, 返回这次是否到期. 未运行时忽略, 负数(时钟回拨)忽略
func (t *Timer) Tick(elapsed time.Duration) bool {
	if t.state != StateRunning || elapsed < 0 {
		return false
	}
	if elapsed < t.remaining {
		t.remaining -= elapsed
		return false
	}
	t.remaining = 0
	t.state = StateElapsed
	t.notify()
	return true
}

// Cancel 停止倒计时回到空闲, 不会提醒
func (t *Timer) Cancel() {
	t.state = StateIdle
	t.remaining = 0
}

func (t *Timer) notify() {
	e := Event{
		TimerID:  t.id,
		Name:     t.name,
		Duration: t.duration,
		At:       time.Now(),
	}
	if err := t.notifier.Notify(e); err != nil {
		mlog.Warnf("timer %s(%s) notify failed: %v", t.name, t.id, err)
	}
}
