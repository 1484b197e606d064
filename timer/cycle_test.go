package timer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/mapletimer/errs"
)

func maplePhases() []Phase {
	return []Phase{
		{Name: "Farming", Duration: 140 * time.Second, Alert: true},
		{Name: "Pickup", Duration: 25 * time.Second},
	}
}

func TestNewCycleValidates(t *testing.T) {
	_, err := NewCycle(nil, CycleOptions{}, nil)
	assert.True(t, errors.Is(err, errs.NoPhases))

	_, err = NewCycle([]Phase{{Name: "x", Duration: 0}}, CycleOptions{}, nil)
	assert.True(t, errors.Is(err, errs.InvalidDuration))
}

func TestCycleStatusLine(t *testing.T) {
	c, err := NewCycle(maplePhases(), CycleOptions{Repeat: true, AlertHold: 2 * time.Second}, nil)
	require.NoError(t, err)
	assert.Equal(t, "idle", c.Status().String())

	require.NoError(t, c.Start())
	assert.Equal(t, "Farming: 140s", c.Status().String())

	c.Tick(500 * time.Millisecond)
	assert.Equal(t, "Farming: 140s", c.Status().String())
	c.Tick(600 * time.Millisecond)
	assert.Equal(t, "Farming: 139s", c.Status().String())

	c.Tick(138900 * time.Millisecond)
	st := c.Status()
	assert.Equal(t, "Pickup", st.Phase)
	assert.True(t, st.Alert)
	assert.Equal(t, "Pickup: 25s !", st.String())

	c.Tick(2 * time.Second)
	assert.Equal(t, "Pickup: 23s", c.Status().String())
}

func TestCycleAlertWindowCountsOverrun(t *testing.T) {
	opts := CycleOptions{Repeat: true, AlertHold: 2 * time.Second}

	c, err := NewCycle(maplePhases(), opts, nil)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	// 提醒已经过去10秒
	c.Tick(150 * time.Second)
	st := c.Status()
	assert.False(t, st.Alert)
	assert.Equal(t, "Pickup: 15s", st.String())

	c, err = NewCycle(maplePhases(), opts, nil)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	// 还在2秒内
	c.Tick(141 * time.Second)
	assert.Equal(t, "Pickup: 24s !", c.Status().String())
	c.Tick(time.Second)
	assert.Equal(t, "Pickup: 23s", c.Status().String())

	// 睡眠一小时, 之前的提醒不再显示
	c, err = NewCycle(maplePhases(), opts, nil)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	c.Tick(time.Hour)
	assert.False(t, c.Status().Alert)
}

func TestCycleRoundsNotifyOncePerAlertPhase(t *testing.T) {
	rec := &recorder{}
	c, err := NewCycle(maplePhases(), CycleOptions{Repeat: true}, rec)
	require.NoError(t, err)
	require.NoError(t, c.Start())

	const rounds = 5
	step := 100 * time.Millisecond
	for total := time.Duration(0); total < rounds*165*time.Second; total += step {
		c.Tick(step)
	}
	require.Len(t, rec.events, rounds)
	for i, e := range rec.events {
		assert.Equal(t, "Farming", e.Name)
		assert.Equal(t, i+1, e.Round)
	}
	assert.Equal(t, rounds+1, c.Round())
	assert.Equal(t, "Farming", c.Status().Phase)
	assert.Equal(t, 140*time.Second, c.Status().Remaining)
}

func TestCycleCarriesOverrun(t *testing.T) {
	c, err := NewCycle(maplePhases(), CycleOptions{Repeat: true}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Start())

	// 150秒: 刷怪结束, 捡东西过了10秒
	assert.Equal(t, 1, c.Tick(150*time.Second))
	st := c.Status()
	assert.Equal(t, "Pickup", st.Phase)
	assert.Equal(t, 15*time.Second, st.Remaining)
}

func TestCycleSkipsWholeRoundsSilently(t *testing.T) {
	rec := &recorder{}
	c, err := NewCycle(maplePhases(), CycleOptions{Repeat: true}, rec)
	require.NoError(t, err)
	require.NoError(t, c.Start())

	// 睡眠一小时
	c.Tick(time.Hour)
	assert.Len(t, rec.events, 1)
	// 3600 = 140 + 21*165 + 995... 按轮长取模后位置不变
	offset := (time.Hour - 140*time.Second) % (165 * time.Second)
	st := c.Status()
	if offset < 25*time.Second {
		assert.Equal(t, "Pickup", st.Phase)
		assert.Equal(t, 25*time.Second-offset, st.Remaining)
	} else {
		assert.Equal(t, "Farming", st.Phase)
		assert.Equal(t, 165*time.Second-offset, st.Remaining)
	}
	assert.Greater(t, c.Round(), 20)
}

func TestCycleWithoutRepeatFinishes(t *testing.T) {
	rec := &recorder{}
	c, err := NewCycle([]Phase{{Name: "Egg", Duration: 3 * time.Second, Alert: true}}, CycleOptions{}, rec)
	require.NoError(t, err)
	require.NoError(t, c.Start())

	c.Tick(2 * time.Second)
	assert.False(t, c.Done())
	assert.Equal(t, 1, c.Tick(5*time.Second))
	assert.True(t, c.Done())
	assert.False(t, c.Running())
	assert.Equal(t, "done", c.Status().String())
	assert.Zero(t, c.Tick(time.Second))
	assert.Len(t, rec.events, 1)
}

func TestCycleCancel(t *testing.T) {
	rec := &recorder{}
	c, err := NewCycle(maplePhases(), CycleOptions{Repeat: true}, rec)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	assert.True(t, errors.Is(c.Start(), errs.AlreadyRunning))

	c.Tick(100 * time.Second)
	c.Cancel()
	assert.Zero(t, c.Tick(time.Hour))
	assert.Empty(t, rec.events)
	assert.Equal(t, StateIdle, c.Current().State())
	assert.Equal(t, "idle", c.Status().String())

	// 取消后可以重新开始
	require.NoError(t, c.Start())
	assert.Equal(t, "Farming: 140s", c.Status().String())
}

func TestCycleRestartAfterDone(t *testing.T) {
	c, err := NewCycle([]Phase{{Name: "a", Duration: time.Second}, {Name: "b", Duration: time.Second}}, CycleOptions{}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	c.Tick(5 * time.Second)
	require.True(t, c.Done())
	require.NoError(t, c.Start())
	assert.Equal(t, "a: 1s", c.Status().String())
	assert.Equal(t, 1, c.Round())
}
