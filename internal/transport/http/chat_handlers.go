package http

import (
	"context"
	"time"

	"quiz-room-service/internal/domain"
)

func (h *WSHandler) registerChatHandlers() {
	on(h, EventRoomMessage, h.onRoomMessage)
}

// onRoomMessage stores the line, echoes it to the sender as sentByYou and
// broadcasts it to the rest of the room.
func (h *WSHandler) onRoomMessage(_ context.Context, c *Client, p roomMessagePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	msg := p.Message
	if msg.Time == "" {
		msg.Time = time.Now().UTC().Format(time.RFC3339)
	}
	if player, ok := h.rooms.PlayerBySocket(room, c.id); ok {
		msg.Author = player.Name
	} else if h.rooms.IsOrganizer(room, c.id) {
		msg.Author = domain.OrganizerName
	}
	if err := h.rooms.AddChatMessage(room, c.id, msg); err != nil {
		return err
	}
	h.hub.EmitRoomExcept(room.ID(), c.id, EventNewRoomMessage, msg)
	h.hub.EmitTo(c.id, EventSentByYou, msg)
	return nil
}
