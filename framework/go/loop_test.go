package g

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/mapletimer/clock"
)

func TestLoopRunsCallbacksInOrder(t *testing.T) {
	l := NewLoop(16, 16)
	var got []int
	l.Init(nil, nil)
	go l.Run()
	defer l.Close()

	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, l.TryRunFunc(func() { got = append(got, i) }))
	}
	require.NoError(t, l.SyncRunFunc(func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopDeliversExpiries(t *testing.T) {
	l := NewLoop(16, 16)
	type fired struct {
		tid, now int64
		data     any
	}
	ch := make(chan fired, 1)
	l.Init(func(tid int64, now int64, data any) {
		ch <- fired{tid, now, data}
	}, nil)
	go l.Run()
	defer l.Close()

	l.ExpiryReceiver() <- &clock.Expiry{TimerId: 7, NowMs: 1234, Data: "tick"}
	select {
	case f := <-ch:
		assert.Equal(t, fired{7, 1234, "tick"}, f)
	case <-time.After(time.Second):
		t.Fatal("expiry not delivered")
	}
}

func TestLoopRecoversPanic(t *testing.T) {
	l := NewLoop(16, 16)
	var recovered atomic.Value
	l.SetPanicHandler(func(r any) { recovered.Store(r) })
	go l.Run()
	defer l.Close()

	require.NoError(t, l.SyncRunFunc(func() { panic("bad tick") }))
	assert.Equal(t, "bad tick", recovered.Load())
	require.NoError(t, l.SyncRunFunc(func() {}))
}

func TestLoopClose(t *testing.T) {
	l := NewLoop(16, 16)
	var closed atomic.Bool
	l.Init(nil, func() { closed.Store(true) })
	go l.Run()

	l.Close()
	l.Close()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.True(t, closed.Load())
	assert.ErrorIs(t, l.SyncRunFunc(func() {}), ErrLoopClosed)
	assert.ErrorIs(t, l.TryRunFunc(func() {}), ErrLoopClosed)
	assert.ErrorIs(t, l.MustRunFunc(func() {}), ErrLoopClosed)
}

func TestCtxRunFuncCancelled(t *testing.T) {
	l := NewLoop(16, 16)
	// 不启动Run, 回调永远不会执行
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.CtxRunFunc(ctx, func() {}), context.DeadlineExceeded)
}
