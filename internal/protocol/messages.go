// Package protocol defines the JSON wire messages exchanged over the
// websocket. Client messages are decoded in two stages: an envelope read
// for the type tag, then a strict per-type decode.
package protocol

import (
	"encoding/json"
	"fmt"

	"gilii/internal/domain"
)

// Client message types.
const (
	TypeHello       = "HELLO"
	TypePing        = "PING"
	TypeReady       = "READY"
	TypePlay        = "PLAY"
	TypePass        = "PASS"
	TypeStandUp     = "STAND_UP"
	TypeSetRules    = "SET_RULES"
	TypeSyncRequest = "SYNC_REQUEST"
	TypeStartGame   = "START_GAME"
)

// Server message types.
const (
	TypeWelcome            = "WELCOME"
	TypeRoomState          = "ROOM_STATE"
	TypeRoomOverview       = "ROOM_OVERVIEW"
	TypeRoundStart         = "ROUND_START"
	TypeDealt              = "DEALT"
	TypeGameState          = "GAME_STATE"
	TypePersonalState      = "PERSONAL_STATE"
	TypeRoundEnd           = "ROUND_END"
	TypeGameEnd            = "GAME_END"
	TypeScoreUpdate        = "SCORE_UPDATE"
	TypeRules              = "RULES"
	TypeSyncState          = "SYNC_STATE"
	TypePlayerJoined       = "PLAYER_JOINED"
	TypePlayerLeft         = "PLAYER_LEFT"
	TypePlayerDisconnected = "PLAYER_DISCONNECTED"
	TypePlayerReconnected  = "PLAYER_RECONNECTED"
	TypePlayerStoodUp      = "PLAYER_STOOD_UP"
	TypeActionError        = "ACTION_ERROR"
	TypeError              = "ERROR"
)

// Protocol error codes carried by ERROR messages.
const (
	CodeInvalidMessage   = "INVALID_MESSAGE"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeInvalidRoom      = "INVALID_ROOM"
	CodeAuthInvalid      = "AUTH_INVALID"
)

// CloseReplaced is the close code sent to a connection superseded by a
// newer connection for the same player.
const CloseReplaced = 4000

// ClientMessage is the decoded form of any inbound message.
type ClientMessage struct {
	Type        string
	RoomID      string
	AccessToken string
	IsReady     bool
	Cards       []domain.Card
	ScoreLimit  int
}

type envelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type helloBody struct {
	RoomID      string `json:"roomId"`
	AccessToken string `json:"accessToken"`
}

type readyBody struct {
	RoomID  string `json:"roomId"`
	IsReady bool   `json:"isReady"`
}

type playBody struct {
	RoomID string        `json:"roomId"`
	Cards  []domain.Card `json:"cards"`
}

type setRulesBody struct {
	RoomID     string `json:"roomId"`
	ScoreLimit int    `json:"scoreLimit"`
}

// ParseClientMessage decodes and validates one inbound frame. Any error
// maps to an ERROR message with code INVALID_MESSAGE.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientMessage{}, fmt.Errorf("malformed json: %w", err)
	}

	msg := ClientMessage{Type: env.Type, RoomID: env.RoomID}
	switch env.Type {
	case TypeHello:
		var body helloBody
		if err := json.Unmarshal(data, &body); err != nil {
			return ClientMessage{}, err
		}
		if body.RoomID == "" || body.AccessToken == "" {
			return ClientMessage{}, fmt.Errorf("HELLO requires roomId and accessToken")
		}
		msg.AccessToken = body.AccessToken

	case TypePing:
		// No body.

	case TypeReady:
		var body readyBody
		if err := json.Unmarshal(data, &body); err != nil {
			return ClientMessage{}, err
		}
		if body.RoomID == "" {
			return ClientMessage{}, fmt.Errorf("READY requires roomId")
		}
		msg.IsReady = body.IsReady

	case TypePlay:
		var body playBody
		if err := json.Unmarshal(data, &body); err != nil {
			return ClientMessage{}, err
		}
		if body.RoomID == "" {
			return ClientMessage{}, fmt.Errorf("PLAY requires roomId")
		}
		if len(body.Cards) == 0 {
			return ClientMessage{}, fmt.Errorf("PLAY requires cards")
		}
		for _, c := range body.Cards {
			if !domain.ValidCard(c) {
				return ClientMessage{}, fmt.Errorf("invalid card %s%s", c.Rank, c.Suit)
			}
		}
		msg.Cards = body.Cards

	case TypePass, TypeStandUp, TypeSyncRequest, TypeStartGame:
		if env.RoomID == "" {
			return ClientMessage{}, fmt.Errorf("%s requires roomId", env.Type)
		}

	case TypeSetRules:
		var body setRulesBody
		if err := json.Unmarshal(data, &body); err != nil {
			return ClientMessage{}, err
		}
		if body.RoomID == "" {
			return ClientMessage{}, fmt.Errorf("SET_RULES requires roomId")
		}
		msg.ScoreLimit = body.ScoreLimit

	default:
		return ClientMessage{}, fmt.Errorf("unknown message type %q", env.Type)
	}
	return msg, nil
}

// SeatInfo describes one of the four table seats.
type SeatInfo struct {
	SeatIndex    int     `json:"seatIndex"`
	PlayerID     *string `json:"playerId"`
	Status       string  `json:"status"`
	OfflineSince *int64  `json:"offlineSince,omitempty"`
}

// PlayerInfo is a lobby roster entry.
type PlayerInfo struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

type Welcome struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type RoomState struct {
	Type    string       `json:"type"`
	RoomID  string       `json:"roomId"`
	Players []PlayerInfo `json:"players"`
}

type RoundStart struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	StartedAt int64  `json:"startedAt"`
}

type Dealt struct {
	Type            string        `json:"type"`
	RoomID          string        `json:"roomId"`
	StarterPlayerID string        `json:"starterPlayerId"`
	Reason          string        `json:"reason"`
	YourHand        []domain.Card `json:"yourHand"`
	SeatedPlayerIDs []string      `json:"seatedPlayerIds"`
}

type GameState struct {
	Type                string           `json:"type"`
	RoomID              string           `json:"roomId"`
	Seats               []SeatInfo       `json:"seats"`
	CurrentTurnPlayerID string           `json:"currentTurnPlayerId"`
	LastPlay            *domain.LastPlay `json:"lastPlay"`
	HandsCount          map[string]int   `json:"handsCount"`
	PassedPlayerIDs     []string         `json:"passedPlayerIds"`
	TurnID              string           `json:"turnId"`
	TurnDeadlineAt      int64            `json:"turnDeadlineAt"`
}

type PersonalState struct {
	Type     string        `json:"type"`
	RoomID   string        `json:"roomId"`
	YourHand []domain.Card `json:"yourHand"`
}

type RoundEnd struct {
	Type           string `json:"type"`
	RoomID         string `json:"roomId"`
	WinnerPlayerID string `json:"winnerPlayerId"`
}

type GameEnd struct {
	Type           string         `json:"type"`
	RoomID         string         `json:"roomId"`
	WinnerPlayerID string         `json:"winnerPlayerId"`
	TotalScores    map[string]int `json:"totalScores"`
}

type ScoreUpdate struct {
	Type        string         `json:"type"`
	RoomID      string         `json:"roomId"`
	TotalScores map[string]int `json:"totalScores"`
	Eliminated  []string       `json:"eliminated"`
}

type Rules struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId"`
	ScoreLimit int    `json:"scoreLimit"`
}

type RoomOverview struct {
	Type                string         `json:"type"`
	RoomID              string         `json:"roomId"`
	Phase               string         `json:"phase"`
	Seats               []SeatInfo     `json:"seats"`
	QueuePlayerIDs      []string       `json:"queuePlayerIds"`
	TotalScores         map[string]int `json:"totalScores"`
	Eliminated          []string       `json:"eliminated"`
	CurrentTurnPlayerID string         `json:"currentTurnPlayerId,omitempty"`
	TurnID              string         `json:"turnId,omitempty"`
	TurnDeadlineAt      int64          `json:"turnDeadlineAt,omitempty"`
	HandsCount          map[string]int `json:"handsCount,omitempty"`
}

type SyncState struct {
	Type                string           `json:"type"`
	RoomID              string           `json:"roomId"`
	Phase               string           `json:"phase"`
	Seats               []SeatInfo       `json:"seats"`
	QueuePlayerIDs      []string         `json:"queuePlayerIds"`
	CurrentTurnPlayerID string           `json:"currentTurnPlayerId"`
	LastPlay            *domain.LastPlay `json:"lastPlay"`
	HandsCount          map[string]int   `json:"handsCount"`
	TotalScores         map[string]int   `json:"totalScores"`
	Eliminated          []string         `json:"eliminated"`
	YourHand            []domain.Card    `json:"yourHand"`
	StarterPlayerID     string           `json:"starterPlayerId,omitempty"`
	StarterReason       string           `json:"starterReason,omitempty"`
	TurnID              string           `json:"turnId,omitempty"`
	TurnDeadlineAt      int64            `json:"turnDeadlineAt,omitempty"`
	ScoreLimit          int              `json:"scoreLimit"`
}

// PlayerEvent covers PLAYER_JOINED, PLAYER_LEFT, PLAYER_DISCONNECTED,
// PLAYER_RECONNECTED, and PLAYER_STOOD_UP.
type PlayerEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// ActionError reports a rejected game action. The connection stays open.
type ActionError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProtocolError reports a protocol-level failure such as a malformed
// frame or a message sent before HELLO.
type ProtocolError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewActionError(code, message string) ActionError {
	return ActionError{Type: TypeActionError, Code: code, Message: message}
}

func NewProtocolError(code, message string) ProtocolError {
	return ProtocolError{Type: TypeError, Code: code, Message: message}
}
