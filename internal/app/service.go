package app

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"gilii/internal/domain"
)

// Service contains the room use-cases. Operations mutate the given room
// synchronously and return the events to dispatch; they never block. The
// caller owns room locking.
type Service struct {
	rng         *rand.Rand
	now         func() time.Time
	newToken    func() string
	turnTimeout time.Duration
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand, turnTimeout time.Duration) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if turnTimeout <= 0 {
		turnTimeout = 30 * time.Second
	}
	return &Service{
		rng:         rng,
		now:         time.Now,
		newToken:    uuid.NewString,
		turnTimeout: turnTimeout,
	}
}

// Join registers the player in the room, or marks an existing player back
// online. Returns whether this was a rejoin of a known player.
func (s *Service) Join(r *domain.Room, playerID string) (bool, []Event) {
	if p, ok := r.Players[playerID]; ok && p.Status != domain.PlayerRemoved {
		p.Status = domain.PlayerActive
		p.OfflineSince = 0
		if seat := r.SeatOf(playerID); seat != nil {
			seat.Status = domain.SeatActive
			seat.OfflineSince = 0
		}
		return true, []Event{
			broadcastExcept(EventPlayerReconnected, PlayerPayload{PlayerID: playerID}, playerID),
			broadcast(EventRoomState, nil),
			broadcast(EventRoomOverview, nil),
		}
	}

	if p, ok := r.Players[playerID]; ok {
		// Previously removed player coming back; scores and elimination
		// state are kept.
		p.Status = domain.PlayerActive
		p.Ready = false
		p.OfflineSince = 0
	} else {
		r.Players[playerID] = &domain.Player{ID: playerID, Status: domain.PlayerActive}
		r.JoinOrder = append(r.JoinOrder, playerID)
		if _, ok := r.Scores[playerID]; !ok {
			r.Scores[playerID] = 0
		}
		if r.OwnerID == "" {
			r.OwnerID = playerID
		}
	}

	// Mid-game joiners wait in the queue until rotation seats them.
	if r.Phase != domain.PhaseLobby && r.SeatOf(playerID) == nil {
		if _, eliminated := r.Eliminated[playerID]; !eliminated && !inQueue(r, playerID) {
			r.Queue = append(r.Queue, playerID)
		}
	}

	return false, []Event{
		broadcastExcept(EventPlayerJoined, PlayerPayload{PlayerID: playerID}, playerID),
		broadcast(EventRoomState, nil),
		broadcast(EventRoomOverview, nil),
	}
}

// SetReady updates the player's readiness flag.
func (s *Service) SetReady(r *domain.Room, playerID string, ready bool) []Event {
	if p, ok := r.Players[playerID]; ok {
		p.Ready = ready
	}
	return []Event{
		broadcast(EventRoomState, nil),
		broadcast(EventRoomOverview, nil),
	}
}

// SetRules sets the elimination score limit. Owner-only, lobby-only.
func (s *Service) SetRules(r *domain.Room, actorID string, scoreLimit int) ([]Event, error) {
	if r.OwnerID != actorID {
		return nil, ErrNotOwner
	}
	if r.Phase != domain.PhaseLobby {
		return nil, ErrInvalidPhase
	}
	if scoreLimit < 1 || scoreLimit > 60 {
		return nil, ErrInvalidScoreLimit
	}
	r.ScoreLimit = scoreLimit
	return []Event{broadcast(EventRules, RulesPayload{ScoreLimit: scoreLimit})}, nil
}

// StartGame validates the owner's start request, then deals the first
// round. Requires the lobby phase, at least two present players, all ready.
func (s *Service) StartGame(r *domain.Room, actorID string) ([]Event, error) {
	if r.OwnerID != actorID {
		return nil, ErrNotOwner
	}
	if r.Phase != domain.PhaseLobby {
		return nil, ErrInvalidPhase
	}

	present := presentPlayers(r)
	if len(present) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	for _, p := range present {
		if !p.Ready {
			return nil, ErrPlayersNotReady
		}
	}

	r.Phase = domain.PhaseStarting
	events := []Event{broadcast(EventRoundStart, RoundStartPayload{StartedAt: s.now().UnixMilli()})}

	dealEvents, err := s.deal(r)
	if err != nil {
		r.Phase = domain.PhaseLobby
		return nil, err
	}
	return append(events, dealEvents...), nil
}

// DealNextRound deals after the round-end pause. The caller re-validates
// the phase on wake; this is a no-op outside ROUND_END.
func (s *Service) DealNextRound(r *domain.Room) ([]Event, error) {
	if r.Phase != domain.PhaseRoundEnd {
		return nil, nil
	}
	r.LastPlay = nil
	r.Passed = nil
	return s.deal(r)
}

// deal shuffles, deals hands to the seated players, determines the
// starter, and opens the first trick.
func (s *Service) deal(r *domain.Room) ([]Event, error) {
	seated := r.SeatedIDs()
	seated = filterSeatable(r, seated)
	if len(seated) == 0 {
		seated = s.seatFirstRound(r)
	}
	if len(seated) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	deck := domain.Shuffle(domain.NewDeck(), s.rng)
	hands := domain.DealHands(seated, deck)

	tableUnchanged := domain.SameMembers(r.PrevSeatedIDs, seated)
	starterID, reason := domain.DetermineStarter(hands, seated, tableUnchanged, r.PrevWinnerID)

	r.Phase = domain.PhasePlaying
	r.SeatPlayers(seated)
	r.Hands = hands
	r.StarterID = starterID
	r.StarterReason = reason
	r.CurrentTurnID = starterID
	r.LastPlay = nil
	r.Passed = make(map[string]struct{})
	s.newTurn(r)

	events := []Event{broadcast(EventStatusPlaying, nil)}
	for _, id := range seated {
		events = append(events, unicast(EventDealt, DealtPayload{
			PlayerID:  id,
			StarterID: starterID,
			Reason:    reason,
			Hand:      hands[id],
			SeatedIDs: seated,
		}, id))
	}
	return append(events,
		broadcast(EventGameState, nil),
		broadcast(EventRoomOverview, nil),
	), nil
}

// seatFirstRound picks the first four joiners still present and not
// eliminated; later joiners wait in the queue.
func (s *Service) seatFirstRound(r *domain.Room) []string {
	var seated []string
	for _, id := range r.JoinOrder {
		p := r.Players[id]
		if p == nil || p.Status == domain.PlayerRemoved {
			continue
		}
		if _, eliminated := r.Eliminated[id]; eliminated {
			continue
		}
		if len(seated) < 4 {
			seated = append(seated, id)
		} else if !inQueue(r, id) {
			r.Queue = append(r.Queue, id)
		}
	}
	return seated
}

// newTurn regenerates the turn token and deadline. Any previously armed
// turn timer is invalidated by the token change.
func (s *Service) newTurn(r *domain.Room) {
	r.TurnToken = s.newToken()
	r.TurnDeadline = s.now().Add(s.turnTimeout)
}

func presentPlayers(r *domain.Room) []*domain.Player {
	var out []*domain.Player
	for _, id := range r.JoinOrder {
		if p := r.Players[id]; p != nil && p.Status != domain.PlayerRemoved {
			out = append(out, p)
		}
	}
	return out
}

func filterSeatable(r *domain.Room, ids []string) []string {
	var out []string
	for _, id := range ids {
		p := r.Players[id]
		if p == nil || p.Status == domain.PlayerRemoved {
			continue
		}
		if _, eliminated := r.Eliminated[id]; eliminated {
			continue
		}
		out = append(out, id)
	}
	return out
}

func inQueue(r *domain.Room, playerID string) bool {
	for _, id := range r.Queue {
		if id == playerID {
			return true
		}
	}
	return false
}
