package app

import "errors"

// Rejectable action conditions. The ws layer maps each to its wire
// ACTION_ERROR code; room state is never mutated on any of these.
var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrInvalidPhase          = errors.New("action not allowed in current phase")
	ErrGameStateInvalid      = errors.New("game state not initialized")
	ErrNotYourTurn           = errors.New("actor does not hold the turn")
	ErrInvalidPlaySize       = errors.New("play must be 1, 2, 3, or 5 cards")
	ErrHandNotFound          = errors.New("actor hand not found")
	ErrCardNotInHand         = errors.New("card not in actor hand")
	ErrDuplicateCards        = errors.New("card repeated in play")
	ErrInvalidPair           = errors.New("two cards must share a rank")
	ErrInvalidSet            = errors.New("three cards must share a rank")
	ErrInvalidFiveCard       = errors.New("five cards form no legal combination")
	ErrMustMatchCount        = errors.New("play must match the led card count")
	ErrPlayTooWeak           = errors.New("play does not beat the current play")
	ErrPassNotAllowedStarter = errors.New("trick starter must play")
	ErrNotOwner              = errors.New("actor is not the room owner")
	ErrNotEnoughPlayers      = errors.New("not enough players to start")
	ErrPlayersNotReady       = errors.New("not all players are ready")
	ErrInvalidScoreLimit     = errors.New("score limit must be between 1 and 60")
)
