package http

import (
	"context"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/logging"
)

func (h *WSHandler) registerJoinHandlers() {
	on(h, EventJoinRoom, h.onJoinRoom)
	on(h, EventChooseName, h.onChooseName)
	on(h, EventSuccessfulJoin, h.onSuccessfulJoin)
	on(h, EventCreateRoom, h.onCreateRoom)
	on(h, EventOrganizerJoined, h.onOrganizerJoined)
	on(h, EventToggleLockRoom, h.onToggleLockRoom)
	on(h, EventGetPlayerNames, h.onGetPlayerNames)
	on(h, EventBanName, h.onBanName)
	on(h, EventToggleChatPermission, h.onToggleChatPermission)
}

// onJoinRoom only answers the join check; the socket enters the room group once its name is claimed.
func (h *WSHandler) onJoinRoom(_ context.Context, c *Client, p roomPayload) error {
	h.hub.EmitTo(c.id, EventJoinRoom, h.rooms.ProcessJoinRoom(p.RoomID))
	return nil
}

// onChooseName claims the name atomically and seats the socket in the room group.
func (h *WSHandler) onChooseName(_ context.Context, c *Client, p namePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	valid := !h.rooms.IsLocked(room) && h.rooms.ClaimUsername(room, c.id, p.Name)
	if valid {
		h.hub.Join(c.id, room.ID())
	}
	h.hub.EmitTo(c.id, EventChooseName, chooseNameResult{Valid: valid, Name: p.Name})
	return nil
}

func (h *WSHandler) onSuccessfulJoin(_ context.Context, c *Client, p namePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	player, ok := h.rooms.PlayerBySocket(room, c.id)
	if !ok {
		return domain.ErrPlayerNotFound
	}
	logging.ForRoom(room.ID()).PlayerJoined(player.Name)
	h.hub.EmitRoom(room.ID(), EventPlayerHasJoined, playerNamePayload{Name: player.Name})
	return nil
}

func (h *WSHandler) onCreateRoom(ctx context.Context, c *Client, p createRoomPayload) error {
	room, err := h.rooms.CreateRoom(ctx, p.QuizID, c.id)
	if err != nil {
		return err
	}
	h.hub.Join(c.id, room.ID())
	h.hub.EmitTo(c.id, EventRoomCreated, roomCreatedPayload{RoomID: room.ID()})
	return nil
}

func (h *WSHandler) onOrganizerJoined(_ context.Context, c *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	if err := h.rooms.BindOrganizer(room, c.id); err != nil {
		return err
	}
	h.hub.Join(c.id, room.ID())
	h.hub.EmitTo(c.id, EventOrganizerJoined, roomCreatedPayload{RoomID: room.ID()})
	return nil
}

func (h *WSHandler) onToggleLockRoom(_ context.Context, _ *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	locked := h.rooms.ToggleLock(room)
	h.hub.EmitRoom(room.ID(), EventLockStatus, lockStatusPayload{IsLocked: locked})
	return nil
}

func (h *WSHandler) onGetPlayerNames(_ context.Context, c *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.hub.EmitTo(c.id, EventPlayerNames, playerNamesPayload{Names: h.rooms.PlayerNames(room)})
	return nil
}

// onBanName bars the name, pulls the player out of the group, tells them, then tells everyone.
// The ban may complete the current question.
func (h *WSHandler) onBanName(_ context.Context, _ *Client, p namePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	banned, removed, allSubmitted := h.rooms.BanPlayer(room, p.Name)
	logging.ForRoom(room.ID()).PlayerBanned(p.Name)
	if removed {
		h.hub.Leave(banned.SocketID, room.ID())
		h.hub.EmitTo(banned.SocketID, EventBanNotification, playerNamePayload{Name: banned.Name})
	}
	h.hub.EmitRoom(room.ID(), EventBanName, playerNamePayload{Name: p.Name})
	if allSubmitted {
		h.toOrganizer(room, EventAllSubmissionReceived, nil)
	}
	return nil
}

func (h *WSHandler) onToggleChatPermission(_ context.Context, c *Client, p namePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	player, err := h.rooms.ToggleChatPermission(room, p.Name)
	if err != nil {
		return err
	}
	payload := chatPermissionPayload{Name: player.Name, CanChat: player.CanChat}
	h.hub.EmitTo(player.SocketID, EventChatPermission, payload)
	h.hub.EmitTo(c.id, EventChatPermission, payload)
	return nil
}
