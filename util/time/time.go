package time

import (
	"sync/atomic"
	"time"
)

// Ms2Duration 毫秒差转Duration
func Ms2Duration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// CeilSeconds 剩余时间向上取整到秒, 139.2s显示为140s
func CeilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

// Source 毫秒时间源, 时间轮和计时模块通过它取时间
type Source interface {
	NowMs() int64
}

type systemSource struct{}

func (systemSource) NowMs() int64 {
	return time.Now().UnixMilli()
}

// System 系统时间源
var System Source = systemSource{}

// Manual 手动推进的时间源, 测试用
type Manual struct {
	ms atomic.Int64
}

func NewManual(startMs int64) *Manual {
	m := &Manual{}
	m.ms.Store(startMs)
	return m
}

func (m *Manual) NowMs() int64 {
	return m.ms.Load()
}

func (m *Manual) Advance(d time.Duration) int64 {
	return m.ms.Add(d.Milliseconds())
}
