package app

import (
	"time"

	"quiz-room-service/internal/logging"
)

// TimerHooks receives countdown output. Both are called from the countdown goroutine.
type TimerHooks struct {
	OnTick   func(remaining int)
	OnFinish func()
}

// StartTimer starts the room countdown unless one is already running, in which
// case the call is ignored and false is returned.
func (m *RoomManager) StartTimer(room *Room, initial int, tick time.Duration, hooks TimerHooks) bool {
	if tick <= 0 {
		tick = time.Second
	}
	room.mu.Lock()
	if room.timer != nil {
		room.mu.Unlock()
		logging.ForRoom(room.id).TimerIgnored()
		return false
	}
	c := newCountdown(initial, tick)
	room.timer = c
	room.mu.Unlock()
	m.metrics.TimerStarted()

	onTick := hooks.OnTick
	if onTick == nil {
		onTick = func(int) {}
	}
	go c.run(onTick, func() {
		if m.releaseTimer(room, c) && hooks.OnFinish != nil {
			hooks.OnFinish()
		}
	})
	return true
}

// StopTimer halts the running countdown and waits for its goroutine, so no tick
// is delivered after it returns. Safe to call when nothing runs.
func (m *RoomManager) StopTimer(room *Room) bool {
	room.mu.Lock()
	c := room.timer
	room.timer = nil
	room.mu.Unlock()
	if c == nil {
		return false
	}
	m.metrics.TimerStopped()
	c.halt()
	<-c.done
	return true
}

// RestartTimer replaces any running countdown with a new one.
func (m *RoomManager) RestartTimer(room *Room, initial int, tick time.Duration, hooks TimerHooks) bool {
	m.StopTimer(room)
	return m.StartTimer(room, initial, tick, hooks)
}

// ActiveTimer returns the running countdown, nil when stopped.
func (m *RoomManager) ActiveTimer(room *Room) *Countdown {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.timer
}

// releaseTimer clears the field when c is still the active countdown.
func (m *RoomManager) releaseTimer(room *Room, c *Countdown) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.timer != c {
		return false
	}
	room.timer = nil
	m.metrics.TimerStopped()
	return true
}
