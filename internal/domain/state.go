package domain

import "time"

// Phase is the lifecycle stage of a room.
type Phase string

const (
	// PhaseLobby is the pre-game state where players ready up.
	PhaseLobby Phase = "lobby"
	// PhaseStarting is the transient state between the owner's start and the deal.
	PhaseStarting Phase = "starting"
	// PhasePlaying is the active trick loop.
	PhasePlaying Phase = "playing"
	// PhaseRoundEnd is the settlement window between rounds.
	PhaseRoundEnd Phase = "round_end"
)

// SeatStatus is the lifecycle state of a seat.
type SeatStatus string

const (
	SeatEmpty   SeatStatus = "EMPTY"
	SeatActive  SeatStatus = "ACTIVE"
	SeatOffline SeatStatus = "OFFLINE"
	SeatRemoved SeatStatus = "REMOVED"
)

// PlayerStatus is the lifecycle state of a player within a room.
type PlayerStatus string

const (
	PlayerActive  PlayerStatus = "ACTIVE"
	PlayerOffline PlayerStatus = "OFFLINE"
	PlayerRemoved PlayerStatus = "REMOVED"
)

// Seat is one of the four table slots. Seats are the source of truth for
// who is at the table; seated-player lists are always derived from them.
type Seat struct {
	Index        int
	PlayerID     string
	Status       SeatStatus
	OfflineSince int64 // unix millis, set while Status is OFFLINE
}

// Player holds per-player room state that outlives rounds. Entries are
// never deleted; removed players keep their score history.
type Player struct {
	ID           string
	Ready        bool
	Status       PlayerStatus
	OfflineSince int64 // unix millis
}

// Room is the authoritative state of one table.
type Room struct {
	ID         string
	Phase      Phase
	OwnerID    string
	ScoreLimit int

	Seats     [4]Seat
	Players   map[string]*Player
	JoinOrder []string
	Queue     []string

	Scores     map[string]int
	Eliminated map[string]struct{}

	// Round-carryover fields for next-round starter determination.
	PrevSeatedIDs []string
	PrevWinnerID  string

	// Round state, valid from deal until round end.
	Hands         map[string][]Card
	StarterID     string
	StarterReason StarterReason

	// Trick state, valid only while PhasePlaying.
	CurrentTurnID string
	LastPlay      *LastPlay
	Passed        map[string]struct{}
	TurnToken     string
	TurnDeadline  time.Time
}

// NewRoom constructs an empty lobby-phase room with the default score limit.
func NewRoom(id string) *Room {
	r := &Room{
		ID:         id,
		Phase:      PhaseLobby,
		ScoreLimit: 60,
		Players:    make(map[string]*Player),
		Scores:     make(map[string]int),
		Eliminated: make(map[string]struct{}),
	}
	for i := range r.Seats {
		r.Seats[i] = Seat{Index: i, Status: SeatEmpty}
	}
	return r
}
