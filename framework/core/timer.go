package core

import (
	"errors"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fixkme/mapletimer/clock"
	g "github.com/fixkme/mapletimer/framework/go"
	"github.com/fixkme/mapletimer/mlog"
	"github.com/fixkme/mapletimer/notify"
	"github.com/fixkme/mapletimer/timer"
	utime "github.com/fixkme/mapletimer/util/time"
)

var Timer *TimerModule

var ErrNotRunning = errors.New("timer module not running")

const (
	loopTaskSize   = 256
	loopExpirySize = 64
	clockTaskSize  = 64
)

type TimerOptions struct {
	Phases       []timer.Phase
	Repeat       bool
	AlertHold    time.Duration
	TickInterval time.Duration
	Notifier     notify.Notifier
	Source       utime.Source // 默认系统时间
	OnFinish     func()       // 不循环时全部段结束后调用, 在Loop协程里
}

// TimerModule 时间轮驱动的计时模块, cycle只在loop协程里读写
type TimerModule struct {
	name    string
	opt     *TimerOptions
	clk     *clock.Clock
	loop    *g.Loop
	cycle   *timer.Cycle
	quit    chan struct{}
	started atomic.Bool
	running atomic.Bool // loop在跑, 可以提交
	status  atomic.Pointer[timer.Status]

	tickId int64 // 当前tick定时器
	lastMs int64 // 上次推进的时间
}

func InitTimerModule(name string, opt *TimerOptions) error {
	m, err := NewTimerModule(name, opt)
	if err != nil {
		return err
	}
	Timer = m
	return nil
}

func NewTimerModule(name string, opt *TimerOptions) (*TimerModule, error) {
	if opt == nil || opt.Notifier == nil {
		return nil, errors.New("timer module needs a notifier")
	}
	if opt.TickInterval < clock.Resolution*time.Millisecond {
		opt.TickInterval = clock.Resolution * time.Millisecond
	}
	if opt.Source == nil {
		opt.Source = utime.System
	}
	return &TimerModule{
		name: name,
		opt:  opt,
		quit: make(chan struct{}),
	}, nil
}

func (m *TimerModule) OnInit() (err error) {
	m.cycle, err = timer.NewCycle(m.opt.Phases, timer.CycleOptions{
		Repeat:    m.opt.Repeat,
		AlertHold: m.opt.AlertHold,
	}, m.opt.Notifier)
	if err != nil {
		return err
	}
	m.clk = clock.NewClock(clock.WithSource(m.opt.Source), clock.WithTaskSize(clockTaskSize))
	m.loop = g.NewLoop(loopTaskSize, loopExpirySize)
	m.loop.SetPanicHandler(func(r any) {
		mlog.Errorf("%s loop panic: %v\n%s", m.name, r, debug.Stack())
	})
	m.loop.Init(m.onExpiry, m.beforeClose)
	m.publish()
	return nil
}

func (m *TimerModule) Run() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	m.clk.Start(m.quit)
	m.running.Store(true)
	if err := m.loop.MustRunFunc(m.start); err != nil {
		mlog.Errorf("%s start cycle: %v", m.name, err)
	}
	m.loop.Run()
}

func (m *TimerModule) Destroy() {
	if m.started.CompareAndSwap(false, true) {
		// 没跑过
		m.closeNotifier()
		return
	}
	m.running.Store(false)
	m.loop.Close()
	<-m.loop.Done()
	close(m.quit)
	<-m.clk.Stopped()
	m.closeNotifier()
}

func (m *TimerModule) Name() string {
	return m.name
}

func (m *TimerModule) closeNotifier() {
	if err := m.opt.Notifier.Close(); err != nil {
		mlog.Warnf("%s close notifier: %v", m.name, err)
	}
}

// Status 最近一次推进后的快照, 任意协程可调用
func (m *TimerModule) Status() timer.Status {
	if s := m.status.Load(); s != nil {
		return *s
	}
	return timer.Status{}
}

func (m *TimerModule) StatusLine() string {
	return m.Status().String()
}

// Restart 取消当前循环, 从第一段重新开始
func (m *TimerModule) Restart() error {
	if !m.running.Load() {
		return ErrNotRunning
	}
	return m.loop.SyncRunFunc(func() {
		m.cancel()
		m.start()
	})
}

// Cancel 停止循环, 不再提醒
func (m *TimerModule) Cancel() error {
	if !m.running.Load() {
		return ErrNotRunning
	}
	return m.loop.SyncRunFunc(m.cancel)
}

// HandleCommand 状态服务的一行请求: cancel, restart, 其他只返回状态行
func (m *TimerModule) HandleCommand(line string) string {
	var err error
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "cancel":
		err = m.Cancel()
	case "restart":
		err = m.Restart()
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return m.StatusLine()
}

func (m *TimerModule) publish() {
	s := m.cycle.Status()
	m.status.Store(&s)
}

func (m *TimerModule) start() {
	if err := m.cycle.Start(); err != nil {
		mlog.Errorf("%s start cycle: %v", m.name, err)
		return
	}
	m.lastMs = m.clk.Now()
	m.publish()
	m.schedule()
	mlog.Infof("%s started %v: %s", m.name, m.cycle.Phases(), m.cycle.Status())
}

func (m *TimerModule) cancel() {
	if m.tickId != 0 {
		if _, err := m.clk.CancelTimer(m.tickId); err != nil {
			mlog.Warnf("%s cancel tick: %v", m.name, err)
		}
		m.tickId = 0
	}
	m.cycle.Cancel()
	m.publish()
}

func (m *TimerModule) schedule() {
	id, err := m.clk.NewTimer(m.lastMs+m.opt.TickInterval.Milliseconds(), nil, m.loop.ExpiryReceiver())
	if err != nil {
		mlog.Errorf("%s schedule tick: %v", m.name, err)
		m.tickId = 0
		return
	}
	m.tickId = id
}

func (m *TimerModule) onExpiry(tid int64, nowMs int64, _ any) {
	if tid != m.tickId {
		return
	}
	m.tickId = 0
	elapsed := utime.Ms2Duration(nowMs - m.lastMs)
	m.lastMs = nowMs
	if n := m.cycle.Tick(elapsed); n > 0 {
		mlog.Debugf("%s %d phase(s) elapsed, now %s", m.name, n, m.cycle.Status())
	}
	m.publish()

	if m.cycle.Done() {
		mlog.Infof("%s finished", m.name)
		if m.opt.OnFinish != nil {
			m.opt.OnFinish()
		}
		return
	}
	if m.cycle.Running() {
		m.schedule()
	}
}

func (m *TimerModule) beforeClose() {
	if m.tickId != 0 {
		m.clk.CancelTimer(m.tickId)
		m.tickId = 0
	}
	mlog.Infof("%s stopped at %s, timer %s", m.name, m.cycle.Status(), m.cycle.Current().ID())
}
