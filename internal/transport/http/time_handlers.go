package http

import (
	"context"
	"time"

	"quiz-room-service/internal/app"
)

func (h *WSHandler) registerTimeHandlers() {
	on(h, EventStartTimer, h.onStartTimer)
	on(h, EventStopTimer, h.onStopTimer)
	on(h, EventTransitionClockFinished, h.onTransitionClockFinished)
	on(h, EventTimerInterrupted, h.onTimerInterrupted)
	on(h, EventPauseTimer, h.onPauseTimer)
	on(h, EventPanicMode, h.onPanicMode)
}

// timerHooks broadcast every tick and the final stop to the room group.
func (h *WSHandler) timerHooks(roomID string) app.TimerHooks {
	return app.TimerHooks{
		OnTick: func(remaining int) {
			h.hub.EmitRoom(roomID, EventTimer, timerPayload{Time: remaining})
		},
		OnFinish: func() {
			h.hub.EmitRoom(roomID, EventTimerFinished, nil)
		},
	}
}

// onStartTimer is ignored while a countdown already runs for the room.
func (h *WSHandler) onStartTimer(_ context.Context, _ *Client, p startTimerPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	tick := h.timers.TickRate
	if p.TickRate > 0 {
		tick = time.Duration(p.TickRate) * time.Millisecond
	}
	h.rooms.StartTimer(room, p.InitialTime, tick, h.timerHooks(room.ID()))
	return nil
}

func (h *WSHandler) onStopTimer(_ context.Context, _ *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.rooms.StopTimer(room)
	h.hub.EmitRoom(room.ID(), EventStopTimer, nil)
	return nil
}

func (h *WSHandler) onTransitionClockFinished(_ context.Context, _ *Client, p roomPayload) error {
	return h.relay(p.RoomID, EventTransitionClockFinished, nil)
}

func (h *WSHandler) onTimerInterrupted(_ context.Context, _ *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.rooms.StopTimer(room)
	h.hub.EmitRoom(room.ID(), EventTimerInterrupted, nil)
	return nil
}

// onPauseTimer stops the countdown, or restarts it from the caller's currentTime;
// the room does not remember the remaining time.
func (h *WSHandler) onPauseTimer(_ context.Context, _ *Client, p pauseTimerPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	if p.IsPaused {
		h.rooms.StopTimer(room)
	} else {
		h.rooms.StartTimer(room, p.CurrentTime, h.timers.TickRate, h.timerHooks(room.ID()))
	}
	h.hub.EmitRoom(room.ID(), EventPauseTimer, pausedPayload{IsPaused: p.IsPaused})
	return nil
}

func (h *WSHandler) onPanicMode(_ context.Context, _ *Client, p panicModePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.hub.EmitRoom(room.ID(), EventPanicMode, nil)
	h.rooms.RestartTimer(room, p.CurrentTime, h.timers.PanicTickRate, h.timerHooks(room.ID()))
	return nil
}
