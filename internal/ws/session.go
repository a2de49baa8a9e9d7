package ws

import (
	"errors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gilii/internal/app"
	"gilii/internal/auth"
	"gilii/internal/domain"
	"gilii/internal/protocol"
)

// handleFrame processes one inbound frame from the read loop.
func (e *Engine) handleFrame(c *client, data []byte) {
	msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		e.sendTo(c, protocol.NewProtocolError(protocol.CodeInvalidMessage, err.Error()))
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		// Keepalive only; pong frames cover liveness.
		return
	case protocol.TypeHello:
		e.handleHello(c, msg)
		return
	}

	if c.playerID == "" {
		e.sendTo(c, protocol.NewProtocolError(protocol.CodeNotAuthenticated, "Must send HELLO first"))
		return
	}
	if msg.RoomID != c.roomID {
		e.sendTo(c, protocol.NewProtocolError(protocol.CodeInvalidRoom, "Room ID does not match authenticated room"))
		return
	}

	h := e.rooms.Get(c.roomID)
	if h == nil {
		e.sendTo(c, protocol.NewActionError("ROOM_NOT_FOUND", "Room not found"))
		return
	}

	if msg.Type == protocol.TypeSyncRequest {
		h.With(func(r *domain.Room) {
			e.sendTo(c, syncStateMsg(r, c.playerID))
		})
		return
	}

	h.With(func(r *domain.Room) {
		prevToken, prevPhase := r.TurnToken, r.Phase
		var events []app.Event
		var err error

		switch msg.Type {
		case protocol.TypeReady:
			events = e.svc.SetReady(r, c.playerID, msg.IsReady)
		case protocol.TypePlay:
			events, err = e.svc.Play(r, c.playerID, msg.Cards)
		case protocol.TypePass:
			events, err = e.svc.Pass(r, c.playerID)
		case protocol.TypeStandUp:
			events = e.svc.StandUp(r, c.playerID)
		case protocol.TypeSetRules:
			events, err = e.svc.SetRules(r, c.playerID, msg.ScoreLimit)
		case protocol.TypeStartGame:
			events, err = e.svc.StartGame(r, c.playerID)
		}

		if err != nil {
			e.sendTo(c, protocol.NewActionError(actionErrorCode(err), err.Error()))
			return
		}
		e.dispatch(r, events)
		e.armTimers(h, r, prevToken, prevPhase)
	})
}

// handleHello authenticates the connection and joins the room. A
// duplicate HELLO on an authenticated connection is ignored.
func (e *Engine) handleHello(c *client, msg protocol.ClientMessage) {
	if c.playerID != "" {
		return
	}

	playerID, err := e.verifier.Verify(msg.AccessToken)
	if err != nil {
		e.sendTo(c, protocol.NewProtocolError(protocol.CodeAuthInvalid, auth.ErrInvalidToken.Error()))
		c.closeWith(websocket.ClosePolicyViolation, "AUTH_INVALID")
		return
	}

	c.playerID = playerID
	c.roomID = msg.RoomID

	if old := e.register(c); old != nil {
		old.closeWith(protocol.CloseReplaced, "REPLACED")
	}

	h := e.rooms.GetOrCreate(c.roomID)
	h.StopIdleTimer(playerID)

	h.With(func(r *domain.Room) {
		_, events := e.svc.Join(r, playerID)
		e.sendTo(c, protocol.Welcome{Type: protocol.TypeWelcome, RoomID: r.ID, PlayerID: playerID})
		e.sendTo(c, syncStateMsg(r, playerID))
		e.dispatch(r, events)
	})

	e.log.Info("player joined",
		zap.String("room_id", c.roomID), zap.String("player_id", playerID))
}

// actionErrorCode maps service errors onto wire error codes.
func actionErrorCode(err error) string {
	for _, m := range actionErrorCodes {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return "GAME_STATE_INVALID"
}

var actionErrorCodes = []struct {
	err  error
	code string
}{
	{app.ErrRoomNotFound, "ROOM_NOT_FOUND"},
	{app.ErrInvalidPhase, "INVALID_PHASE"},
	{app.ErrGameStateInvalid, "GAME_STATE_INVALID"},
	{app.ErrNotYourTurn, "NOT_YOUR_TURN"},
	{app.ErrInvalidPlaySize, "INVALID_PLAY_SIZE"},
	{app.ErrHandNotFound, "HAND_NOT_FOUND"},
	{app.ErrCardNotInHand, "CARD_NOT_IN_HAND"},
	{app.ErrDuplicateCards, "DUPLICATE_CARDS"},
	{app.ErrInvalidPair, "INVALID_PAIR"},
	{app.ErrInvalidSet, "INVALID_SET"},
	{app.ErrInvalidFiveCard, "INVALID_FIVE_CARD_HAND"},
	{app.ErrMustMatchCount, "MUST_MATCH_CARD_COUNT"},
	{app.ErrPlayTooWeak, "PLAY_TOO_WEAK"},
	{app.ErrPassNotAllowedStarter, "PASS_NOT_ALLOWED_STARTER"},
	{app.ErrNotOwner, "NOT_OWNER"},
	{app.ErrNotEnoughPlayers, "NOT_ENOUGH_PLAYERS"},
	{app.ErrPlayersNotReady, "PLAYERS_NOT_READY"},
	{app.ErrInvalidScoreLimit, "INVALID_SCORE_LIMIT"},
}
