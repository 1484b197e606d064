package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/mapletimer/errs"
	"github.com/fixkme/mapletimer/timer"
)

type countPlayer struct {
	n     atomic.Int32
	delay time.Duration
	err   error
}

func (p *countPlayer) Play() error {
	time.Sleep(p.delay)
	p.n.Add(1)
	return p.err
}

type closeCounter struct {
	timer.Notifier
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func farmingEvent() timer.Event {
	return timer.Event{
		TimerID:  "cq1",
		Name:     "Farming",
		Duration: 140 * time.Second,
		At:       time.UnixMilli(1_718_700_000_123),
		Round:    3,
	}
}

func TestSoundPlays(t *testing.T) {
	p := &countPlayer{}
	require.NoError(t, NewSound(p).Notify(farmingEvent()))
	assert.EqualValues(t, 1, p.n.Load())

	p.err = errs.AudioDevice
	assert.True(t, errors.Is(NewSound(p).Notify(farmingEvent()), errs.AudioDevice))
}

func TestMultiJoinsErrors(t *testing.T) {
	var got []string
	ok := timer.NotifierFunc(func(e timer.Event) error { got = append(got, "ok"); return nil })
	bad := timer.NotifierFunc(func(e timer.Event) error { got = append(got, "bad"); return errs.Publish })
	c := &closeCounter{Notifier: ok}

	m := Multi{bad, c, Log{}}
	err := m.Notify(farmingEvent())
	assert.True(t, errors.Is(err, errs.Publish))
	assert.Equal(t, []string{"bad", "ok"}, got)

	require.NoError(t, m.Close())
	assert.Equal(t, 1, c.closed)
	assert.NoError(t, Multi{ok, Log{}}.Notify(farmingEvent()))
}

func TestAsyncReturnsImmediately(t *testing.T) {
	p := &countPlayer{delay: 100 * time.Millisecond}
	a, err := NewAsync(NewSound(p), 2, time.Second)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, a.Notify(farmingEvent()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	// Close等播放结束
	require.NoError(t, a.Close())
	assert.EqualValues(t, 1, p.n.Load())

	err = a.Notify(farmingEvent())
	assert.True(t, errors.Is(err, errs.NotifyDropped))
}

func TestAsyncDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	blocker := timer.NotifierFunc(func(e timer.Event) error {
		wg.Done()
		<-release
		return nil
	})
	a, err := NewAsync(blocker, 1, time.Second)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Notify(farmingEvent()))
	wg.Wait()
	err = a.Notify(farmingEvent())
	assert.True(t, errors.Is(err, errs.NotifyDropped))
	close(release)
}

func TestAsyncLogsDownstreamError(t *testing.T) {
	p := &countPlayer{err: errs.AudioDevice}
	a, err := NewAsync(NewSound(p), 1, time.Second)
	require.NoError(t, err)
	// 下游失败不影响Notify的返回
	require.NoError(t, a.Notify(farmingEvent()))
	require.NoError(t, a.Close())
	assert.EqualValues(t, 1, p.n.Load())
}

type fakePub struct {
	channel string
	message any
	err     error
}

func (f *fakePub) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.message = message
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisPublishes(t *testing.T) {
	pub := &fakePub{}
	r := NewRedis(pub, "mapletimer:alerts")
	require.NoError(t, r.Notify(farmingEvent()))
	assert.Equal(t, "mapletimer:alerts", pub.channel)

	data, ok := pub.message.([]byte)
	require.True(t, ok)
	e, instance, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, r.Instance(), instance)
	want := farmingEvent()
	assert.Equal(t, want.TimerID, e.TimerID)
	assert.Equal(t, want.Name, e.Name)
	assert.Equal(t, want.Duration, e.Duration)
	assert.True(t, want.At.Equal(e.At))
	assert.Equal(t, want.Round, e.Round)
}

func TestRedisPublishError(t *testing.T) {
	pub := &fakePub{err: redis.ErrClosed}
	err := NewRedis(pub, "c").Notify(farmingEvent())
	assert.True(t, errors.Is(err, errs.Publish))
	assert.True(t, errors.Is(err, redis.ErrClosed))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := DecodeEvent([]byte{0xff, 0x01})
	assert.True(t, errors.Is(err, errs.Unmarshal))
	_, _, err = DecodeEvent(nil)
	assert.True(t, errors.Is(err, errs.Unmarshal))
}
