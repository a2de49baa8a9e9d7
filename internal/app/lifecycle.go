package app

import "gilii/internal/domain"

// Disconnect marks the player offline without removing them from the
// game. If they held the turn it advances immediately rather than letting
// the table wait out the turn timer.
func (s *Service) Disconnect(r *domain.Room, playerID string) []Event {
	p, ok := r.Players[playerID]
	if !ok || p.Status == domain.PlayerRemoved {
		return nil
	}

	p.Status = domain.PlayerOffline
	p.OfflineSince = s.now().UnixMilli()
	if seat := r.SeatOf(playerID); seat != nil {
		seat.Status = domain.SeatOffline
		seat.OfflineSince = p.OfflineSince
	}

	events := []Event{broadcast(EventPlayerDisconnected, PlayerPayload{PlayerID: playerID})}

	if r.Phase == domain.PhasePlaying && r.CurrentTurnID == playerID {
		if next := r.NextActivePlayer(playerID); next != "" {
			r.CurrentTurnID = next
			if r.LastPlay == nil {
				r.Passed = make(map[string]struct{})
			}
			s.newTurn(r)
		}
	}

	events = append(events,
		broadcast(EventRoomState, nil),
		broadcast(EventRoomOverview, nil),
	)
	if r.Phase == domain.PhasePlaying {
		events = append(events, broadcast(EventGameState, nil))
	}
	return events
}

// IdleRemove permanently removes a player whose idle window expired
// without a reconnect. A reconnected player is left alone. Mirrors
// STAND_UP for the last-player-standing check, but assigns no penalty.
func (s *Service) IdleRemove(r *domain.Room, playerID string) []Event {
	p, ok := r.Players[playerID]
	if !ok || p.Status != domain.PlayerOffline {
		return nil
	}

	if r.Phase == domain.PhasePlaying && r.CurrentTurnID == playerID {
		if next := r.NextActivePlayer(playerID); next != "" {
			r.CurrentTurnID = next
			if r.LastPlay == nil {
				r.Passed = make(map[string]struct{})
			}
			s.newTurn(r)
		}
	}

	wasSeated := r.SeatOf(playerID) != nil
	s.removeFromPlay(r, playerID)

	events := []Event{broadcast(EventPlayerLeft, PlayerPayload{PlayerID: playerID})}
	events = append(events, s.checkLastPlayerStanding(r, wasSeated)...)

	events = append(events,
		broadcast(EventRoomState, nil),
		broadcast(EventRoomOverview, nil),
	)
	if r.Phase == domain.PhasePlaying {
		events = append(events, broadcast(EventGameState, nil))
	}
	return events
}

// StandUp is a voluntary, permanent exit. The player takes the maximum
// round penalty, is eliminated, and frees their seat or queue slot.
func (s *Service) StandUp(r *domain.Room, actorID string) []Event {
	wasSeated := r.SeatOf(actorID) != nil

	if r.Phase == domain.PhasePlaying && r.CurrentTurnID == actorID {
		if next := r.NextActivePlayer(actorID); next != "" {
			r.CurrentTurnID = next
			if r.LastPlay == nil {
				r.Passed = make(map[string]struct{})
			}
			s.newTurn(r)
		}
	}

	if r.Phase == domain.PhasePlaying && wasSeated {
		r.Scores[actorID] += standUpPenalty
	}
	r.Eliminated[actorID] = struct{}{}
	s.removeFromPlay(r, actorID)

	events := []Event{broadcast(EventPlayerStoodUp, PlayerPayload{PlayerID: actorID})}
	events = append(events, s.checkLastPlayerStanding(r, wasSeated)...)

	events = append(events,
		broadcast(EventRoomState, nil),
		broadcast(EventRoomOverview, nil),
	)
	if r.Phase == domain.PhasePlaying {
		events = append(events, broadcast(EventGameState, nil))
	}
	return append(events, broadcast(EventScoreUpdate, nil))
}

// removeFromPlay strips the player out of seat, queue, hand, and trick
// membership. The player entry itself persists for score history.
func (s *Service) removeFromPlay(r *domain.Room, playerID string) {
	if p := r.Players[playerID]; p != nil {
		p.Status = domain.PlayerRemoved
		p.Ready = false
	}
	r.VacateSeat(playerID)
	r.RemoveFromQueue(playerID)
	delete(r.Hands, playerID)
	delete(r.Passed, playerID)
}

// checkLastPlayerStanding ends the game when a mid-round removal leaves
// fewer than two seated players. ROUND_END counts as mid-round: a
// departure there must not leave the room waiting on a next deal that
// can never happen.
func (s *Service) checkLastPlayerStanding(r *domain.Room, wasSeated bool) []Event {
	if !wasSeated {
		return nil
	}
	if r.Phase != domain.PhasePlaying && r.Phase != domain.PhaseRoundEnd {
		return nil
	}
	seated := r.SeatedIDs()
	if len(seated) >= 2 {
		return nil
	}
	if len(seated) == 1 {
		return s.endGame(r, seated[0])
	}
	// Everybody left; nothing to award.
	r.Phase = domain.PhaseLobby
	r.Hands = nil
	r.LastPlay = nil
	r.Passed = nil
	r.CurrentTurnID = ""
	r.TurnToken = ""
	return nil
}
