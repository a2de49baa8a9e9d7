package domain

import "sort"

// Rank is a card rank. Ordering outside straights: 3 4 5 6 7 8 9 10 J Q K A 2.
type Rank string

// Suit is a card suit. Ordering: D < C < H < S.
type Suit string

const (
	SuitSpades   Suit = "S"
	SuitHearts   Suit = "H"
	SuitClubs    Suit = "C"
	SuitDiamonds Suit = "D"
)

// Card is a single playing card.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// Ranks lists all ranks in ascending order.
var Ranks = []Rank{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}

// Suits lists all suits in ascending order.
var Suits = []Suit{SuitDiamonds, SuitClubs, SuitHearts, SuitSpades}

// RankOrder maps a rank to its comparison value. 2 is highest outside straights.
var RankOrder = map[Rank]int{
	"3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
	"10": 10, "J": 11, "Q": 12, "K": 13, "A": 14, "2": 15,
}

// SuitOrder maps a suit to its comparison value.
var SuitOrder = map[Suit]int{
	SuitDiamonds: 1, SuitClubs: 2, SuitHearts: 3, SuitSpades: 4,
}

// ValidCard reports whether the card carries a known rank and suit.
func ValidCard(c Card) bool {
	_, okR := RankOrder[c.Rank]
	_, okS := SuitOrder[c.Suit]
	return okR && okS
}

// CompareSingle orders two cards by rank, then suit.
// Returns -1 if a is weaker, +1 if a is stronger, 0 if equal.
func CompareSingle(a, b Card) int {
	if d := RankOrder[a.Rank] - RankOrder[b.Rank]; d != 0 {
		return sign(d)
	}
	return sign(SuitOrder[a.Suit] - SuitOrder[b.Suit])
}

// SortCards orders cards ascending by rank, then suit.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return CompareSingle(cards[i], cards[j]) < 0
	})
}

// HighestCard returns the strongest card in a non-empty hand.
func HighestCard(cards []Card) Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if CompareSingle(c, best) > 0 {
			best = c
		}
	}
	return best
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
