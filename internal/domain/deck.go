package domain

import "math/rand"

// NewDeck returns the 52-card deck in canonical order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, r := range Ranks {
		for _, s := range Suits {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of the deck using the provided rng.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealHands deals 13 cards round-robin to each player in seat order.
// Cards beyond 13*len(playerIDs) are left in the deck for the round.
func DealHands(playerIDs []string, deck []Card) map[string][]Card {
	hands := make(map[string][]Card, len(playerIDs))
	for _, id := range playerIDs {
		hands[id] = make([]Card, 0, 13)
	}
	idx := 0
	for i := 0; i < 13; i++ {
		for _, id := range playerIDs {
			if idx < len(deck) {
				hands[id] = append(hands[id], deck[idx])
				idx++
			}
		}
	}
	return hands
}
