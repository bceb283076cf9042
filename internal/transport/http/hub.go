package http

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"quiz-room-service/internal/metrics"
)

// Hub tracks connected sockets and the room groups they belong to. It knows
// nothing about room state; it only routes messages.
type Hub struct {
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		metrics: m,
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encode(event string, data any) []byte {
	if data == nil {
		data = struct{}{}
	}
	raw, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode outbound event")
		return nil
	}
	return raw
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	h.metrics.Connected()
}

// unregister removes the client from every group and closes its send queue.
// It returns the rooms the client was still part of.
func (h *Hub) unregister(c *Client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return nil
	}
	delete(h.clients, c.id)
	rooms := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
		h.leaveLocked(c, roomID)
	}
	close(c.send)
	h.metrics.Disconnected()
	return rooms
}

// Join adds the socket to a room group.
func (h *Hub) Join(socketID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[socketID]
	if !ok {
		return
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[roomID] = members
	}
	members[socketID] = c
	c.rooms[roomID] = struct{}{}
}

// Leave removes the socket from a room group.
func (h *Hub) Leave(socketID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[socketID]; ok {
		h.leaveLocked(c, roomID)
	}
}

func (h *Hub) leaveLocked(c *Client, roomID string) {
	delete(c.rooms, roomID)
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c.id)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// EmitTo sends an event to a single socket.
func (h *Hub) EmitTo(socketID, event string, data any) {
	msg := encode(event, data)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[socketID]; ok {
		c.enqueue(msg)
	}
}

// EmitRoom sends an event to every socket of the room group.
func (h *Hub) EmitRoom(roomID, event string, data any) {
	h.EmitRoomExcept(roomID, "", event, data)
}

// EmitRoomExcept sends an event to the room group, skipping one socket.
func (h *Hub) EmitRoomExcept(roomID, exceptID, event string, data any) {
	msg := encode(event, data)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.rooms[roomID] {
		if id != exceptID {
			c.enqueue(msg)
		}
	}
}

// DisconnectRoom drops the whole group and closes every member connection
// once its pending messages are flushed.
func (h *Hub) DisconnectRoom(roomID string) {
	h.mu.Lock()
	members := h.rooms[roomID]
	delete(h.rooms, roomID)
	kicked := make([]*Client, 0, len(members))
	for _, c := range members {
		delete(c.rooms, roomID)
		kicked = append(kicked, c)
	}
	h.mu.Unlock()

	for _, c := range kicked {
		c.kick()
	}
}
