package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/logging"
	"quiz-room-service/internal/metrics"
)

// TimerSettings are the default countdown rates.
type TimerSettings struct {
	TickRate      time.Duration
	PanicTickRate time.Duration
}

type eventHandler func(ctx context.Context, c *Client, data json.RawMessage) error

// WSHandler upgrades connections and dispatches room events to the RoomManager.
type WSHandler struct {
	rooms     *app.RoomManager
	hub       *Hub
	validator *Validator
	metrics   *metrics.Metrics
	timers    TimerSettings
	sendQueue int
	upgrader  websocket.Upgrader
	handlers  map[string]eventHandler
}

func NewWSHandler(rooms *app.RoomManager, hub *Hub, validator *Validator, m *metrics.Metrics, timers TimerSettings, sendQueue int) *WSHandler {
	if timers.TickRate <= 0 {
		timers.TickRate = time.Second
	}
	if timers.PanicTickRate <= 0 {
		timers.PanicTickRate = 250 * time.Millisecond
	}
	if sendQueue <= 0 {
		sendQueue = 64
	}
	h := &WSHandler{
		rooms:     rooms,
		hub:       hub,
		validator: validator,
		metrics:   m,
		timers:    timers,
		sendQueue: sendQueue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	h.handlers = map[string]eventHandler{}
	h.registerJoinHandlers()
	h.registerGameHandlers()
	h.registerTimeHandlers()
	h.registerChatHandlers()
	return h
}

// ServeWS upgrades HTTP requests to websockets and runs the read loop.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	id := uuid.NewString()
	c := newClient(id, conn, h.sendQueue, logging.ForSocket(id, r.RemoteAddr))
	h.hub.register(c)
	go c.writePump()

	h.hub.EmitTo(c.id, EventConnected, connectedPayload{SocketID: c.id})
	h.readLoop(r.Context(), c)

	rooms := h.hub.unregister(c)
	for _, roomID := range rooms {
		h.handleDisconnect(roomID, c.id)
	}
}

func (h *WSHandler) readLoop(ctx context.Context, c *Client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var inbound inboundMessage
		if err := c.conn.ReadJSON(&inbound); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				h.replyError(c, "", domain.ErrInvalidPayload)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("ws read error")
			}
			return
		}
		h.dispatch(ctx, c, inbound)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, c *Client, inbound inboundMessage) {
	handler, ok := h.handlers[inbound.Event]
	if !ok {
		h.replyError(c, inbound.Event, errUnsupported)
		return
	}
	h.metrics.Event(inbound.Event)
	if err := h.validator.Validate(inbound.Event, inbound.Data); err != nil {
		h.replyError(c, inbound.Event, badRequest(err.Error()))
		return
	}
	if err := handler(ctx, c, inbound.Data); err != nil {
		h.replyError(c, inbound.Event, err)
	}
}

var errUnsupported = errors.New("unsupported event")

type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }

func badRequest(msg string) error { return requestError{msg: msg} }

func (h *WSHandler) replyError(c *Client, event string, err error) {
	code := errorCode(err)
	h.metrics.EventError(h.metricLabel(event), code)
	c.log.Debug().Err(err).Str("event", event).Str("code", code).Msg("event rejected")
	h.hub.EmitTo(c.id, EventError, errorPayload{Event: event, Code: code, Message: err.Error()})
}

// metricLabel keeps client-chosen event names out of metric labels.
func (h *WSHandler) metricLabel(event string) string {
	if event == "" || !h.validator.Known(event) {
		return "unknown"
	}
	return event
}

func errorCode(err error) string {
	var reqErr requestError
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrQuizNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotOrganizer),
		errors.Is(err, domain.ErrChatMuted):
		return "forbidden"
	case errors.As(err, &reqErr),
		errors.Is(err, errUnsupported),
		errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrInvalidPoints),
		errors.Is(err, domain.ErrInvalidRoomID):
		return "bad_request"
	default:
		return "internal"
	}
}

// decode unmarshals an already validated payload.
func decode[T any](data json.RawMessage) (T, error) {
	var payload T
	if len(data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, badRequest(err.Error())
	}
	return payload, nil
}

// on registers a typed handler for event.
func on[T any](h *WSHandler, event string, fn func(ctx context.Context, c *Client, payload T) error) {
	h.handlers[event] = func(ctx context.Context, c *Client, data json.RawMessage) error {
		payload, err := decode[T](data)
		if err != nil {
			return err
		}
		return fn(ctx, c, payload)
	}
}

// handleDisconnect applies leave rules for a socket that dropped without saying goodbye.
// A player dropping from the lobby is removed silently.
func (h *WSHandler) handleDisconnect(roomID, socketID string) {
	room, err := h.rooms.FindRoom(roomID)
	if err != nil {
		return
	}
	if h.rooms.IsOrganizer(room, socketID) {
		h.abortGame(room)
		return
	}
	h.leaveGame(room, socketID, h.rooms.InGame(room))
}
