package app_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-room-service/internal/app"
)

type tickRecorder struct {
	mu       sync.Mutex
	ticks    []int
	finished int
	done     chan struct{}
}

func newTickRecorder() *tickRecorder {
	return &tickRecorder{done: make(chan struct{}, 1)}
}

func (r *tickRecorder) hooks() app.TimerHooks {
	return app.TimerHooks{
		OnTick: func(v int) {
			r.mu.Lock()
			r.ticks = append(r.ticks, v)
			r.mu.Unlock()
		},
		OnFinish: func() {
			r.mu.Lock()
			r.finished++
			r.mu.Unlock()
			r.done <- struct{}{}
		},
	}
}

func (r *tickRecorder) snapshot() ([]int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.ticks...), r.finished
}

func TestTimerCountsDownToZero(t *testing.T) {
	m, _, _ := newTestManager()
	room := mustRoom(t, m)
	rec := newTickRecorder()

	require.True(t, m.StartTimer(room, 3, 2*time.Millisecond, rec.hooks()))

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never finished")
	}
	ticks, finished := rec.snapshot()
	assert.Equal(t, []int{3, 2, 1, 0}, ticks)
	assert.Equal(t, 1, finished)
	assert.Nil(t, m.ActiveTimer(room))

	// A finished timer frees the slot for the next question.
	rec2 := newTickRecorder()
	require.True(t, m.StartTimer(room, 1, 2*time.Millisecond, rec2.hooks()))
	<-rec2.done
}

func TestTimerZeroFinishesImmediately(t *testing.T) {
	m, _, _ := newTestManager()
	room := mustRoom(t, m)
	rec := newTickRecorder()

	require.True(t, m.StartTimer(room, 0, time.Hour, rec.hooks()))
	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("zero countdown did not finish")
	}
	ticks, finished := rec.snapshot()
	assert.Equal(t, []int{0}, ticks)
	assert.Equal(t, 1, finished)
}

func TestSecondStartIsIgnored(t *testing.T) {
	m, _, _ := newTestManager()
	room := mustRoom(t, m)
	rec := newTickRecorder()

	require.True(t, m.StartTimer(room, 100, time.Hour, rec.hooks()))
	first := m.ActiveTimer(room)
	require.NotNil(t, first)

	assert.False(t, m.StartTimer(room, 5, time.Millisecond, newTickRecorder().hooks()))
	assert.Same(t, first, m.ActiveTimer(room))

	assert.True(t, m.StopTimer(room))
	assert.False(t, m.StopTimer(room))
}

func TestStopTimerSilencesCountdown(t *testing.T) {
	m, _, _ := newTestManager()
	room := mustRoom(t, m)
	rec := newTickRecorder()

	require.True(t, m.StartTimer(room, 1000, time.Millisecond, rec.hooks()))
	time.Sleep(10 * time.Millisecond)
	require.True(t, m.StopTimer(room))

	stopped, _ := rec.snapshot()
	time.Sleep(20 * time.Millisecond)
	after, finished := rec.snapshot()

	assert.Equal(t, stopped, after)
	assert.Zero(t, finished)
	assert.Nil(t, m.ActiveTimer(room))
}

func TestRestartTimerReplacesCountdown(t *testing.T) {
	m, _, _ := newTestManager()
	room := mustRoom(t, m)
	slow := newTickRecorder()

	require.True(t, m.StartTimer(room, 100, time.Hour, slow.hooks()))
	old := m.ActiveTimer(room)

	fast := newTickRecorder()
	require.True(t, m.RestartTimer(room, 2, time.Millisecond, fast.hooks()))
	assert.NotSame(t, old, m.ActiveTimer(room))

	select {
	case <-fast.done:
	case <-time.After(2 * time.Second):
		t.Fatal("restarted countdown never finished")
	}
	ticks, _ := fast.snapshot()
	assert.Equal(t, []int{2, 1, 0}, ticks)

	slowTicks, slowFinished := slow.snapshot()
	assert.Equal(t, []int{100}, slowTicks)
	assert.Zero(t, slowFinished)
}
