package app

import "gilii/internal/domain"

// EventKind identifies emitted room events for transport dispatch.
type EventKind string

const (
	// Projection events: the ws layer rebuilds the message from room state.
	EventRoomState    EventKind = "room_state"
	EventRoomOverview EventKind = "room_overview"
	EventGameState    EventKind = "game_state"
	EventScoreUpdate  EventKind = "score_update"

	EventRoundStart         EventKind = "round_start"
	EventDealt              EventKind = "dealt"
	EventPersonalState      EventKind = "personal_state"
	EventRoundEnd           EventKind = "round_end"
	EventGameEnd            EventKind = "game_end"
	EventRules              EventKind = "rules"
	EventPlayerJoined       EventKind = "player_joined"
	EventPlayerReconnected  EventKind = "player_reconnected"
	EventPlayerDisconnected EventKind = "player_disconnected"
	EventPlayerLeft         EventKind = "player_left"
	EventPlayerStoodUp      EventKind = "player_stood_up"

	// Status events drive the optional external status store.
	EventStatusPlaying  EventKind = "status_playing"
	EventStatusFinished EventKind = "status_finished"
)

// Event is a room event with optional targeting. Empty Recipients means
// broadcast; Exclude drops specific players from a broadcast.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string
	Exclude    []string
}

type RoundStartPayload struct {
	StartedAt int64
}

type DealtPayload struct {
	PlayerID  string
	StarterID string
	Reason    domain.StarterReason
	Hand      []domain.Card
	SeatedIDs []string
}

type PersonalStatePayload struct {
	PlayerID string
	Hand     []domain.Card
}

type RoundEndPayload struct {
	WinnerID string
}

type GameEndPayload struct {
	WinnerID string
}

type RulesPayload struct {
	ScoreLimit int
}

type PlayerPayload struct {
	PlayerID string
}

func broadcast(kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload}
}

func unicast(kind EventKind, payload any, playerID string) Event {
	return Event{Kind: kind, Payload: payload, Recipients: []string{playerID}}
}

func broadcastExcept(kind EventKind, payload any, playerID string) Event {
	return Event{Kind: kind, Payload: payload, Exclude: []string{playerID}}
}
