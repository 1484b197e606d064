package timer

import (
	"fmt"
	"time"

	"github.com/fixkme/mapletimer/errs"
	utime "github.com/fixkme/mapletimer/util/time"
)

// Phase 循环里的一段
type Phase struct {
	Name     string
	Duration time.Duration
	Alert    bool // 结束时是否提醒
}

type CycleOptions struct {
	Repeat    bool          // 最后一段结束后从头开始
	AlertHold time.Duration // 提醒后保持告警状态的时长
}

// Cycle 按顺序轮流跑各段, 每段一个Timer
type Cycle struct {
	phases   []Phase
	timers   []*Timer
	opts     CycleOptions
	roundLen time.Duration
	cur      int
	round    int
	running  bool
	done     bool
	alertFor time.Duration
}

func NewCycle(phases []Phase, opts CycleOptions, notifier Notifier) (*Cycle, error) {
	if len(phases) == 0 {
		return nil, errs.NoPhases
	}
	c := &Cycle{
		phases: append([]Phase(nil), phases...),
		timers: make([]*Timer, len(phases)),
		opts:   opts,
	}
	if notifier == nil {
		notifier = Nop
	}
	// 提醒带上当前轮数
	withRound := NotifierFunc(func(e Event) error {
		e.Round = c.round
		return notifier.Notify(e)
	})
	for i, p := range phases {
		if p.Duration <= 0 {
			return nil, errs.InvalidDuration.Printf("phase %q: %v", p.Name, p.Duration)
		}
		c.roundLen += p.Duration
		var n Notifier
		if p.Alert {
			n = withRound
		}
		c.timers[i] = New(p.Name, n)
	}
	return c, nil
}

func (c *Cycle) Phases() []Phase {
	return append([]Phase(nil), c.phases...)
}

func (c *Cycle) Running() bool { return c.running }
func (c *Cycle) Done() bool    { return c.done }
func (c *Cycle) Round() int    { return c.round }

// Current 当前段的计时器
func (c *Cycle) Current() *Timer {
	return c.timers[c.cur]
}

// Start 从第一段开始
func (c *Cycle) Start() error {
	if c.running {
		return errs.AlreadyRunning.Printf("cycle")
	}
	c.cur = 0
	c.round = 1
	c.done = false
	c.alertFor = 0
	if err := c.timers[0].Start(c.phases[0].Duration); err != nil {
		return err
	}
	c.running = true
	return nil
}

// Tick 推进elapsed, 超出当前段的部分顺延到后面的段, 返回结束的段数.
// 超过一整轮的部分按轮长取模, 跳过的轮不提醒.
func (c *Cycle) Tick(elapsed time.Duration) (completed int) {
	if !c.running || elapsed <= 0 {
		return 0
	}
	c.alertFor -= elapsed
	if c.alertFor < 0 {
		c.alertFor = 0
	}
	skipped := false
	alerted := false
	var sinceAlert time.Duration // 最后一次提醒之后又过去的时间, 含跳过的轮
	for c.running {
		t := c.timers[c.cur]
		rem := t.Remaining()
		if elapsed < rem {
			t.Tick(elapsed)
			break
		}
		t.Tick(rem)
		completed++
		elapsed -= rem
		if c.phases[c.cur].Alert {
			alerted = true
			sinceAlert = elapsed
		}
		c.next()
		if !skipped && c.running && c.opts.Repeat && elapsed >= c.roundLen {
			c.round += int(elapsed / c.roundLen)
			elapsed %= c.roundLen
			skipped = true
		}
	}
	if alerted {
		c.alertFor = c.opts.AlertHold - sinceAlert
		if c.alertFor < 0 {
			c.alertFor = 0
		}
	}
	return
}

func (c *Cycle) next() {
	c.cur++
	if c.cur == len(c.phases) {
		if !c.opts.Repeat {
			c.cur = len(c.phases) - 1
			c.running = false
			c.done = true
			return
		}
		c.cur = 0
		c.round++
	}
	// 时长已校验过, 上一轮的计时器已到期
	c.timers[c.cur].Start(c.phases[c.cur].Duration)
}

// Cancel 停止循环
func (c *Cycle) Cancel() {
	c.running = false
	c.alertFor = 0
	c.timers[c.cur].Cancel()
}

func (c *Cycle) Status() Status {
	t := c.timers[c.cur]
	return Status{
		Phase:     t.Name(),
		Remaining: t.Remaining(),
		Alert:     c.alertFor > 0,
		Round:     c.round,
		Running:   c.running,
		Done:      c.done,
	}
}

// Status 某一时刻的快照
type Status struct {
	Phase     string
	Remaining time.Duration
	Alert     bool
	Round     int
	Running   bool
	Done      bool
}

// Seconds 剩余整秒数, 向上取整
func (s Status) Seconds() int64 {
	return utime.CeilSeconds(s.Remaining)
}

func (s Status) String() string {
	switch {
	case s.Done:
		return "done"
	case !s.Running:
		return "idle"
	}
	str := fmt.Sprintf("%s: %ds", s.Phase, s.Seconds())
	if s.Alert {
		str += " !"
	}
	return str
}
