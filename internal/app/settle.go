package app

import "gilii/internal/domain"

// standUpPenalty is the maximum round penalty: 13 cards, doubled for
// holding ten or more, tripled again for never having played.
const standUpPenalty = 13 * 2 * 3

// settle runs round settlement after a hand empties: scoring, elimination,
// the game-over check, and rotation. The room is left in ROUND_END when
// the game continues (the caller schedules the next deal) or back in LOBBY
// when it is over.
func (s *Service) settle(r *domain.Room, winnerID string) []Event {
	seated := r.SeatedIDs()

	r.Phase = domain.PhaseRoundEnd
	r.PrevSeatedIDs = append([]string{}, seated...)
	r.PrevWinnerID = winnerID

	events := []Event{broadcast(EventRoundEnd, RoundEndPayload{WinnerID: winnerID})}

	for _, id := range seated {
		if id == winnerID {
			continue
		}
		remaining := len(r.Hands[id])
		points := remaining
		if remaining >= 10 {
			points *= 2
		}
		if remaining == 13 {
			points *= 3
		}
		r.Scores[id] += points
	}

	for id, score := range r.Scores {
		if id == winnerID {
			continue
		}
		if score >= r.ScoreLimit {
			r.Eliminated[id] = struct{}{}
		}
	}

	events = append(events, broadcast(EventScoreUpdate, nil))

	remaining := remainingPlayers(r)
	if len(remaining) <= 1 {
		gameWinner := winnerID
		if len(remaining) == 1 {
			gameWinner = remaining[0]
		}
		return append(events, s.endGame(r, gameWinner)...)
	}

	r.SeatPlayers(s.rotate(r, winnerID))
	return append(events, broadcast(EventRoomOverview, nil))
}

// rotate reseats the table after a round. With six or more players left in
// the room both the winner and the follow-out leave (double-out);
// otherwise only the winner does. Vacated seats refill from the queue.
func (s *Service) rotate(r *domain.Room, winnerID string) []string {
	doubleOut := len(remainingPlayers(r)) >= 6

	var seated []string
	for _, id := range r.SeatedIDs() {
		if _, eliminated := r.Eliminated[id]; !eliminated {
			seated = append(seated, id)
		}
	}

	if !doubleOut {
		seated = without(seated, winnerID)
		r.Queue = append(r.Queue, winnerID)

		// The queue always has at least the winner here; with an
		// otherwise empty queue the winner re-takes their own seat and
		// the table is unchanged.
		next := r.Queue[0]
		r.Queue = r.Queue[1:]
		return append(seated, next)
	}

	followOutID := s.findFollowOut(r, winnerID)
	seated = without(seated, winnerID)
	if followOutID != "" {
		seated = without(seated, followOutID)
		r.Queue = append(r.Queue, followOutID)
	}
	r.Queue = append(r.Queue, winnerID)

	var newSeated []string
	if len(r.Queue) > 0 {
		newSeated = append(newSeated, r.Queue[0]) // follow-out's seat
		r.Queue = r.Queue[1:]
	}
	newSeated = append(newSeated, seated...)
	if len(r.Queue) > 0 {
		newSeated = append(newSeated, r.Queue[len(r.Queue)-1]) // winner's seat
		r.Queue = r.Queue[:len(r.Queue)-1]
	}
	return newSeated
}

// findFollowOut picks the non-winner with the fewest remaining cards,
// ties broken by the highest single card held.
func (s *Service) findFollowOut(r *domain.Room, winnerID string) string {
	minCards := -1
	var candidates []string
	for _, id := range r.SeatedIDs() {
		if id == winnerID {
			continue
		}
		n := len(r.Hands[id])
		if minCards == -1 || n < minCards {
			minCards = n
			candidates = []string{id}
		} else if n == minCards {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) <= 1 {
		if len(candidates) == 0 {
			return ""
		}
		return candidates[0]
	}

	best := ""
	var bestCard domain.Card
	for _, id := range candidates {
		hand := r.Hands[id]
		if len(hand) == 0 {
			continue
		}
		high := domain.HighestCard(hand)
		if best == "" || domain.CompareSingle(high, bestCard) > 0 {
			best = id
			bestCard = high
		}
	}
	if best == "" {
		return candidates[0]
	}
	return best
}

// endGame reverts the room to the lobby and tears down round state. No
// further dealing happens until the owner starts a new game.
func (s *Service) endGame(r *domain.Room, winnerID string) []Event {
	r.Phase = domain.PhaseLobby
	r.Hands = nil
	r.LastPlay = nil
	r.Passed = nil
	r.CurrentTurnID = ""
	r.StarterID = ""
	r.StarterReason = ""
	r.TurnToken = ""
	r.SeatPlayers(nil)
	r.Queue = nil
	for _, p := range r.Players {
		p.Ready = false
	}
	return []Event{
		broadcast(EventGameEnd, GameEndPayload{WinnerID: winnerID}),
		broadcast(EventStatusFinished, nil),
		broadcast(EventRoomOverview, nil),
	}
}

// remainingPlayers lists players still in the game: present in the room
// and not eliminated.
func remainingPlayers(r *domain.Room) []string {
	var out []string
	for _, id := range r.JoinOrder {
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

func without(ids []string, drop string) []string {
	var out []string
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
