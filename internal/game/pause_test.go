package game_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/timestrainer/internal/game"
)

func TestPauseClock_ZeroValue(t *testing.T) {
	var p game.PauseClock
	now := time.Unix(1000, 0)

	assert.False(t, p.Paused())
	assert.Zero(t, p.Ongoing(now))
	assert.Zero(t, p.Total(now))
}

func TestPauseClock_BeginEnd(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := game.PauseClock{}.Begin(t0)

	assert.True(t, p.Paused())
	assert.Equal(t, t0, p.StartedAt())
	assert.Equal(t, 300*time.Millisecond, p.Ongoing(t0.Add(300*time.Millisecond)))
	assert.Equal(t, 300*time.Millisecond, p.Total(t0.Add(300*time.Millisecond)))

	p = p.End(t0.Add(500 * time.Millisecond))

	assert.False(t, p.Paused())
	assert.Equal(t, 500*time.Millisecond, p.Accumulated())
	assert.Equal(t, 500*time.Millisecond, p.Total(t0.Add(time.Hour)))
}

func TestPauseClock_Accumulates(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := game.PauseClock{}

	p = p.Begin(t0).End(t0.Add(time.Second))
	p = p.Begin(t0.Add(5 * time.Second)).End(t0.Add(7 * time.Second))
	p = p.Begin(t0.Add(10 * time.Second))

	assert.Equal(t, 3*time.Second, p.Accumulated())
	assert.Equal(t, 4*time.Second, p.Total(t0.Add(11*time.Second)))
}

func TestPauseClock_DoubleBeginKeepsFirstStart(t *testing.T) {
	t0 := time.Unix(1000, 0)

	p := game.PauseClock{}.Begin(t0).Begin(t0.Add(time.Second))

	assert.Equal(t, t0, p.StartedAt())
}

func TestPauseClock_EndWithoutBeginIsNoop(t *testing.T) {
	t0 := time.Unix(1000, 0)

	p := game.PauseClock{}.End(t0)

	assert.Zero(t, p.Accumulated())
	assert.False(t, p.Paused())
}

func TestPauseClock_IsAValue(t *testing.T) {
	t0 := time.Unix(1000, 0)
	original := game.PauseClock{}

	_ = original.Begin(t0)

	assert.False(t, original.Paused(), "Begin must not mutate the receiver")
}
