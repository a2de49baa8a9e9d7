package domain

// SeatedIDs returns the ids of occupied, non-removed seats in seat order.
func (r *Room) SeatedIDs() []string {
	var out []string
	for _, s := range r.Seats {
		if s.PlayerID != "" && s.Status != SeatRemoved {
			out = append(out, s.PlayerID)
		}
	}
	return out
}

// SeatOf returns the seat holding the given player, or nil.
func (r *Room) SeatOf(playerID string) *Seat {
	for i := range r.Seats {
		if r.Seats[i].PlayerID == playerID && r.Seats[i].Status != SeatRemoved {
			return &r.Seats[i]
		}
	}
	return nil
}

// SeatPlayers assigns the given players to seats in order, clearing any
// leftover seats.
func (r *Room) SeatPlayers(playerIDs []string) {
	for i := range r.Seats {
		if i < len(playerIDs) && playerIDs[i] != "" {
			status := SeatActive
			offlineSince := int64(0)
			if p := r.Players[playerIDs[i]]; p != nil && p.Status == PlayerOffline {
				status = SeatOffline
				offlineSince = p.OfflineSince
			}
			r.Seats[i] = Seat{Index: i, PlayerID: playerIDs[i], Status: status, OfflineSince: offlineSince}
		} else {
			r.Seats[i] = Seat{Index: i, Status: SeatEmpty}
		}
	}
}

// VacateSeat frees the seat held by the given player, if any.
func (r *Room) VacateSeat(playerID string) {
	for i := range r.Seats {
		if r.Seats[i].PlayerID == playerID {
			r.Seats[i] = Seat{Index: i, Status: SeatEmpty}
		}
	}
}

// RemoveFromQueue drops the player from the waiting queue, if present.
func (r *Room) RemoveFromQueue(playerID string) {
	for i, id := range r.Queue {
		if id == playerID {
			r.Queue = append(r.Queue[:i], r.Queue[i+1:]...)
			return
		}
	}
}

// NextActivePlayer returns the next seated player after the given one that
// still holds cards, wrapping clockwise. Connected players are preferred;
// if every cardholder is offline the first of them is returned. Returns ""
// when nobody else holds cards.
func (r *Room) NextActivePlayer(fromID string) string {
	seated := r.SeatedIDs()
	from := -1
	for i, id := range seated {
		if id == fromID {
			from = i
			break
		}
	}
	if from == -1 {
		if len(seated) == 0 {
			return ""
		}
		from = len(seated) - 1
	}

	fallback := ""
	for i := 1; i <= len(seated); i++ {
		id := seated[(from+i)%len(seated)]
		if id == fromID || len(r.Hands[id]) == 0 {
			continue
		}
		if p := r.Players[id]; p != nil && p.Status == PlayerActive {
			return id
		}
		if fallback == "" {
			fallback = id
		}
	}
	return fallback
}

// ActiveCount returns how many seated players still hold cards.
func (r *Room) ActiveCount() int {
	n := 0
	for _, id := range r.SeatedIDs() {
		if len(r.Hands[id]) > 0 {
			n++
		}
	}
	return n
}

// RemoveCards removes the played cards from a hand.
func RemoveCards(hand []Card, played []Card) []Card {
	out := append([]Card{}, hand...)
	for _, pc := range played {
		for i := 0; i < len(out); i++ {
			if out[i] == pc {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}
	return out
}

// SameMembers reports whether two id lists contain the same members,
// regardless of order.
func SameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
