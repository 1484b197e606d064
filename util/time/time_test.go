package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCeilSeconds(t *testing.T) {
	assert.EqualValues(t, 0, CeilSeconds(0))
	assert.EqualValues(t, 0, CeilSeconds(-time.Second))
	assert.EqualValues(t, 1, CeilSeconds(time.Millisecond))
	assert.EqualValues(t, 140, CeilSeconds(139200*time.Millisecond))
	assert.EqualValues(t, 140, CeilSeconds(140*time.Second))
}

func TestSystemSource(t *testing.T) {
	before := time.Now().UnixMilli()
	got := System.NowMs()
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, time.Now().UnixMilli())
}

func TestManual(t *testing.T) {
	m := NewManual(1000)
	assert.EqualValues(t, 1000, m.NowMs())
	assert.EqualValues(t, 1250, m.Advance(250*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, Ms2Duration(1500))
}
