package clock

import (
	"sync/atomic"
	"time"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/mlog"
	utime "github.com/fixkme/mapletimer/util/time"
)

const (
	_SIEXP            = 1
	Resolution        = 10 * (1 << _SIEXP) // ms, 时间轮每格
	_TIME_WHEEL_LEVEL = 4
	defaultTaskSize   = 1024
)

var (
	_LEVEL_DIVIS = [_TIME_WHEEL_LEVEL]int64{0, 10, 18, 24}
	_LEVEL_SLOTS = [_TIME_WHEEL_LEVEL]int64{1 << 10, 1 << 8, 1 << 6, 1 << 6}
	_LEVEL_MASKS = [_TIME_WHEEL_LEVEL]int64{}
	_LEVEL_TICKS = [_TIME_WHEEL_LEVEL]int64{}
)

func init() {
	for i := 0; i < _TIME_WHEEL_LEVEL; i++ {
		_LEVEL_MASKS[i] = _LEVEL_SLOTS[i] - 1
		if i > 0 {
			_LEVEL_TICKS[i] = _LEVEL_SLOTS[i] * _LEVEL_TICKS[i-1]
		} else {
			_LEVEL_TICKS[i] = _LEVEL_SLOTS[i]
		}
	}
}

type Option func(*Clock)

// WithSource 替换时间源
func WithSource(src utime.Source) Option {
	return func(c *Clock) {
		c.src = src
	}
}

// WithTaskSize 任务队列长度
func WithTaskSize(n int) Option {
	return func(c *Clock) {
		if n > 0 {
			c.taskSize = n
		}
	}
}

// Clock 分层时间轮, 所有状态只在run协程里修改
type Clock struct {
	genId    int64
	lastTime int64
	slot     [_TIME_WHEEL_LEVEL]int64 //每层的指针位置
	tw       [_TIME_WHEEL_LEVEL]timeWheel
	locs     map[int64]*entry //记录位置
	taskSize int
	taskch   chan func()
	closed   atomic.Bool
	stopped  chan struct{}
	src      utime.Source
}

type timeWheel []*entryList

func NewClock(opts ...Option) *Clock {
	c := &Clock{
		taskSize: defaultTaskSize,
		locs:     make(map[int64]*entry),
		stopped:  make(chan struct{}),
		src:      utime.System,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.taskch = make(chan func(), c.taskSize)
	for i := 0; i < _TIME_WHEEL_LEVEL; i++ {
		c.tw[i] = make(timeWheel, _LEVEL_SLOTS[i])
	}
	c.lastTime = c.src.NowMs()
	return c
}

// Now 时间轮使用的当前毫秒时间
func (c *Clock) Now() int64 {
	return c.src.NowMs()
}

// Start 启动时间轮协程, quit关闭后停止
func (c *Clock) Start(quit <-chan struct{}) {
	c.lastTime = c.src.NowMs()
	go c.run(quit)
}

// Stopped 时间轮协程退出后关闭
func (c *Clock) Stopped() <-chan struct{} {
	return c.stopped
}

// NewTimer 在when(毫秒时间戳)到期后把data投递到receiver
func (c *Clock) NewTimer(when int64, data any, receiver chan<- *Expiry) (id int64, err error) {
	err = c.pushTask(func() {
		id = c.schedule(when, data, receiver)
	})
	return
}

func (c *Clock) CancelTimer(id int64) (ok bool, err error) {
	err = c.pushTask(func() {
		ok = c.delTimer(id) != nil
	})
	return
}

func (c *Clock) UpdateTimer(id int64, when int64) (ok bool, err error) {
	err = c.pushTask(func() {
		ok = c.updateTimer(id, when)
	})
	return
}

func (c *Clock) schedule(when int64, data any, receiver chan<- *Expiry) int64 {
	c.genId++
	e := &entry{
		id:       c.genId,
		when:     when,
		data:     data,
		receiver: receiver,
	}
	c.addTimer(e)
	return e.id
}

// place 根据剩余格数算出所在层和槽位
func (c *Clock) place(ticks int64) (level, slot int64) {
	if ticks <= 0 {
		ticks = 1
	}
	for level = 0; level < _TIME_WHEEL_LEVEL; level++ {
		if ticks < _LEVEL_TICKS[level] {
			return level, ((ticks >> _LEVEL_DIVIS[level]) + c.slot[level]) & _LEVEL_MASKS[level]
		}
	}
	level = _TIME_WHEEL_LEVEL - 1
	return level, _LEVEL_MASKS[level]
}

func (c *Clock) addTimer(e *entry) {
	ticks := (e.when - c.lastTime + Resolution - 1) / Resolution //diff 向上取整
	level, slot := c.place(ticks)
	mlog.Tracef("clock add timer [%d, %d, %d], when=%d, lastTime=%d, ticks:%d", e.id, level, slot, e.when, c.lastTime, ticks)
	c.putTimer(level, slot, e)
}

func (c *Clock) putTimer(level, slot int64, e *entry) {
	list := c.tw[level][slot]
	if list == nil {
		list = newEntryList()
		c.tw[level][slot] = list
	}
	list.PushBack(e)
	c.locs[e.id] = e
}

func (c *Clock) delTimer(id int64) *entry {
	e, ok := c.locs[id]
	if ok {
		e.removeFromList()
		delete(c.locs, id)
		return e
	}
	return nil
}

func (c *Clock) updateTimer(id int64, when int64) bool {
	e := c.delTimer(id)
	if e != nil {
		e.when = when
		c.addTimer(e)
		return true
	}
	return false
}

func (c *Clock) trigger(nowMs int64) {
	list := c.tw[0][c.slot[0]]
	if list == nil {
		return
	}
	list.PopRange(func(e *entry) bool {
		delete(c.locs, e.id)
		if e.when > nowMs {
			// 还没到期, 重新加入时间轮, 一般是下一次tick
			c.addTimer(e)
			return true
		}
		select {
		case e.receiver <- &Expiry{TimerId: e.id, NowMs: nowMs, Data: e.data}:
		default:
			// 接收方满了, 放入下一个tick
			mlog.Debugf("clock receiver full, timer %d retry next tick", e.id)
			c.putTimer(0, (c.slot[0]+1)&_LEVEL_MASKS[0], e)
		}
		return true
	})
}

func (c *Clock) tick(nowMs, tkTime int64) {
	c.slot[0] = (c.slot[0] + 1) & _LEVEL_MASKS[0]
	// 0层触发定时器
	c.trigger(nowMs)
	// 高层轮动
	for i := 1; i < _TIME_WHEEL_LEVEL; i++ {
		if c.slot[i-1] != 0 {
			break
		}
		c.slot[i] = (c.slot[i] + 1) & _LEVEL_MASKS[i]
		list := c.tw[i][c.slot[i]]
		if list == nil {
			continue
		}
		list.PopRange(func(e *entry) bool {
			// 加入到下一层, locs里的记录会被putTimer覆盖
			ticks := (e.when - tkTime + Resolution - 1) / Resolution
			level, slot := c.place(ticks)
			c.putTimer(level, slot, e)
			return true
		})
	}
}

// advance 把时间轮推进到nowMs, 中间错过的格子逐个补上
func (c *Clock) advance(nowMs int64) {
	tk := c.lastTime + Resolution
	if nowMs > c.lastTime {
		c.lastTime += Resolution * ((nowMs - c.lastTime) / Resolution)
	}
	for ; tk <= c.lastTime; tk += Resolution {
		c.tick(nowMs, tk)
	}
}

func (c *Clock) run(quit <-chan struct{}) {
	defer close(c.stopped)
	tickTimeSpan := time.Millisecond * Resolution
	ticker := time.NewTicker(tickTimeSpan)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			c.closed.Store(true)
			return
		case <-ticker.C:
			c.advance(c.src.NowMs())
		case fn := <-c.taskch:
			fn()
		}
	}
}

func (c *Clock) pushTask(f func()) error {
	if c.closed.Load() {
		return errs.ClockClosed
	}
	done := make(chan struct{})
	ff := func() {
		defer close(done)
		f()
	}
	select {
	case c.taskch <- ff:
	default:
		return errs.ClockBusy.Printf("task channel full")
	}
	select {
	case <-done:
		return nil
	case <-c.stopped:
		// 退出前可能已经执行
		select {
		case <-done:
			return nil
		default:
			return errs.ClockClosed
		}
	}
}
