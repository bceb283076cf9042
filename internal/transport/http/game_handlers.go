package http

import (
	"context"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/logging"
)

func (h *WSHandler) registerGameHandlers() {
	on(h, EventStartGame, h.onStartGame)
	on(h, EventPlayerLeaveGame, h.onPlayerLeaveGame)
	on(h, EventEndGame, h.onEndGame)
	on(h, EventGoodAnswer, h.onGoodAnswer)
	on(h, EventBadAnswer, h.onBadAnswer)
	on(h, EventToggleSelect, h.onToggleSelect)
	on(h, EventQuestionChoicesUnselect, h.onQuestionChoicesUnselect)
	on(h, EventGiveBonus, h.onGiveBonus)
	on(h, EventAddPointsToPlayer, h.onAddPointsToPlayer)
	on(h, EventNextQuestion, h.onNextQuestion)
	on(h, EventShowResults, h.onShowResults)
	on(h, EventSendResults, h.onSendResults)
	on(h, EventGetResults, h.onGetResults)
	on(h, EventSubmitAnswer, h.onSubmitAnswer)
	on(h, EventSaveChartData, h.onSaveChartData)
}

// relay resolves the room and broadcasts event with no server-side state change.
func (h *WSHandler) relay(roomID, event string, data any) error {
	room, err := h.rooms.FindRoom(roomID)
	if err != nil {
		return err
	}
	h.hub.EmitRoom(room.ID(), event, data)
	return nil
}

// toOrganizer forwards data to the organizer socket of the room.
func (h *WSHandler) toOrganizer(room *app.Room, event string, data any) {
	if org := h.rooms.OrganizerSocket(room); org != "" {
		h.hub.EmitTo(org, event, data)
	}
}

func (h *WSHandler) onStartGame(_ context.Context, _ *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.rooms.StartGame(room)
	h.hub.EmitRoom(room.ID(), EventStartGame, nil)
	return nil
}

func (h *WSHandler) onPlayerLeaveGame(_ context.Context, c *Client, p leaveGamePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.hub.Leave(c.id, room.ID())
	return h.leaveGame(room, c.id, p.IsInGame)
}

// leaveGame removes the player. During play the departure is announced and may
// complete the current question; in the lobby it is silent.
func (h *WSHandler) leaveGame(room *app.Room, socketID string, inGame bool) error {
	player, allSubmitted, err := h.rooms.LeaveGame(room, socketID, inGame)
	if err != nil {
		return err
	}
	logging.ForRoom(room.ID()).PlayerLeft(player.Name, inGame)
	if inGame {
		h.hub.EmitRoom(room.ID(), EventPlayerAbandon, playerNamePayload{Name: player.Name})
		if allSubmitted {
			h.toOrganizer(room, EventAllSubmissionReceived, nil)
		}
	}
	if h.rooms.DeleteIfAbandoned(room) {
		logging.ForRoom(room.ID()).Removed("abandoned")
	}
	return nil
}

func (h *WSHandler) onEndGame(_ context.Context, c *Client, p endGamePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	if p.GameAborted {
		h.abortGame(room)
		return nil
	}
	result := h.rooms.EndGame(room, false)
	h.hub.Leave(c.id, room.ID())
	if !result.Deleted {
		h.hub.EmitRoomExcept(room.ID(), c.id, EventOrganizerLeft, nil)
	}
	return nil
}

// abortGame stops the countdown, tells every non-host socket, then disconnects the whole group.
func (h *WSHandler) abortGame(room *app.Room) {
	organizer := h.rooms.OrganizerSocket(room)
	h.rooms.EndGame(room, true)
	h.hub.EmitRoomExcept(room.ID(), organizer, EventGameAborted, nil)
	h.hub.DisconnectRoom(room.ID())
}

func (h *WSHandler) onSubmitAnswer(_ context.Context, c *Client, p submitAnswerPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	sub, err := h.rooms.RecordSubmission(room, c.id)
	if err != nil {
		return err
	}
	if !sub.Accepted {
		return nil
	}
	event := EventSubmitQCM
	if p.QuestionType == domain.QuestionQRL {
		event = EventSubmitQRL
	}
	h.toOrganizer(room, event, submissionPayload{Name: sub.Player.Name, Answer: p.Answer})
	if sub.AllSubmitted {
		h.toOrganizer(room, EventAllSubmissionReceived, nil)
	}
	return nil
}

func (h *WSHandler) onGoodAnswer(_ context.Context, c *Client, p answerTimePayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	if err := h.rooms.RecordAnswerTime(room, c.id, p.TimeStamp); err != nil {
		return err
	}
	player, _ := h.rooms.PlayerBySocket(room, c.id)
	h.toOrganizer(room, EventGoodAnswer, playerNamePayload{Name: player.Name})
	return nil
}

func (h *WSHandler) onBadAnswer(_ context.Context, c *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	player, ok := h.rooms.PlayerBySocket(room, c.id)
	if !ok {
		return domain.ErrPlayerNotFound
	}
	h.toOrganizer(room, EventBadAnswer, playerNamePayload{Name: player.Name})
	return nil
}

func (h *WSHandler) onToggleSelect(_ context.Context, _ *Client, p toggleSelectPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.toOrganizer(room, EventToggleSelect, p)
	return nil
}

func (h *WSHandler) onQuestionChoicesUnselect(_ context.Context, _ *Client, p unselectPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.toOrganizer(room, EventQuestionChoicesUnselect, p)
	return nil
}

func (h *WSHandler) onGiveBonus(_ context.Context, _ *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	player, ok := h.rooms.GiveBonus(room)
	if !ok {
		return nil
	}
	h.hub.EmitTo(player.SocketID, EventBonus, nil)
	h.toOrganizer(room, EventBonusGiven, playerNamePayload{Name: player.Name})
	return nil
}

// onAddPointsToPlayer targets the named player, or the sender when no name is given.
func (h *WSHandler) onAddPointsToPlayer(_ context.Context, c *Client, p addPointsPayload) error {
	if p.Points < domain.MinPoints || p.Points > domain.MaxPoints {
		return domain.ErrInvalidPoints
	}
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	socketID := c.id
	if p.Name != "" {
		target, ok := h.rooms.PlayerByName(room, p.Name)
		if !ok {
			return domain.ErrPlayerNotFound
		}
		socketID = target.SocketID
	}
	player, err := h.rooms.AddPointsToPlayer(room, socketID, p.Points)
	if err != nil {
		return err
	}
	payload := pointsAddedPayload{Name: player.Name, Points: p.Points, Total: player.Points}
	h.hub.EmitTo(player.SocketID, EventPointsAdded, payload)
	h.toOrganizer(room, EventPointsAdded, payload)
	return nil
}

func (h *WSHandler) onNextQuestion(_ context.Context, _ *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.rooms.NextQuestion(room)
	h.hub.EmitRoom(room.ID(), EventNextQuestion, nil)
	return nil
}

func (h *WSHandler) onShowResults(_ context.Context, _ *Client, p roomPayload) error {
	return h.relay(p.RoomID, EventShowResults, nil)
}

// onSendResults stores the final results, records history and hands them to every player.
func (h *WSHandler) onSendResults(ctx context.Context, _ *Client, p resultsPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	if err := h.rooms.SaveResults(ctx, room, p.Results); err != nil {
		// results are still delivered; history is secondary
		logging.ForRoom(room.ID()).Error(err, "save history")
	}
	h.hub.EmitRoom(room.ID(), EventResults, h.rooms.Results(room))
	return nil
}

func (h *WSHandler) onGetResults(_ context.Context, c *Client, p roomPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.hub.EmitTo(c.id, EventResults, h.rooms.Results(room))
	return nil
}

func (h *WSHandler) onSaveChartData(_ context.Context, _ *Client, p chartDataPayload) error {
	room, err := h.rooms.FindRoom(p.RoomID)
	if err != nil {
		return err
	}
	h.rooms.SaveChartData(room, p.ChartData)
	return nil
}
