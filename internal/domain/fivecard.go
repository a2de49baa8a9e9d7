package domain

import "sort"

// FiveKind identifies a five-card combination, ascending strength:
// STRAIGHT < FLUSH < FULL_HOUSE < FOUR < STRAIGHT_FLUSH.
type FiveKind string

const (
	FiveStraight      FiveKind = "STRAIGHT"
	FiveFlush         FiveKind = "FLUSH"
	FiveFullHouse     FiveKind = "FULL_HOUSE"
	FiveFour          FiveKind = "FOUR"
	FiveStraightFlush FiveKind = "STRAIGHT_FLUSH"
)

var fiveKindOrder = map[FiveKind]int{
	FiveStraight:      1,
	FiveFlush:         2,
	FiveFullHouse:     3,
	FiveFour:          4,
	FiveStraightFlush: 5,
}

// FiveCardHand is a classified five-card play with its tie-break data.
type FiveCardHand struct {
	Kind FiveKind

	// Straight / straight flush: the top card's rank and suit. Suits of
	// the lower cards never matter, which keeps the order strict: two
	// distinct straights always differ at the top card.
	HighestRank Rank
	HighestSuit Suit

	// Flush: the 5 cards sorted by rank ascending, suit descending
	SortedCards []Card

	// Full house
	TripletRank        Rank
	PairRank           Rank
	TripletHighestSuit Suit

	// Four of a kind
	FourRank        Rank
	KickerRank      Rank
	FourHighestSuit Suit
}

// straightRankOrder treats 2 as the lowest card so 2-3-4-5-6 is the
// weakest straight. Everywhere else 2 keeps its usual top position.
func straightRankOrder(r Rank) int {
	if r == "2" {
		return 2
	}
	return RankOrder[r]
}

// isStraightFive detects a straight among exactly 5 cards. Valid straights
// are 2-3-4-5-6 (lowest), 10-J-Q-K-A (highest), and any 5 consecutive
// ranks not containing a 2.
func isStraightFive(cards []Card) (bool, Rank) {
	if len(cards) != 5 {
		return false, ""
	}

	sorted := make([]Card, 5)
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		return straightRankOrder(sorted[i].Rank) < straightRankOrder(sorted[j].Rank)
	})

	low := []Rank{"2", "3", "4", "5", "6"}
	high := []Rank{"10", "J", "Q", "K", "A"}
	matchLow, matchHigh := true, true
	hasTwo := false
	for i, c := range sorted {
		if c.Rank != low[i] {
			matchLow = false
		}
		if c.Rank != high[i] {
			matchHigh = false
		}
		if c.Rank == "2" {
			hasTwo = true
		}
	}
	if matchLow {
		return true, "6"
	}
	if matchHigh {
		return true, "A"
	}
	if hasTwo {
		return false, ""
	}

	sort.Slice(sorted, func(i, j int) bool {
		return RankOrder[sorted[i].Rank] < RankOrder[sorted[j].Rank]
	})
	for i := 0; i < 4; i++ {
		if RankOrder[sorted[i+1].Rank] != RankOrder[sorted[i].Rank]+1 {
			return false, ""
		}
	}
	return true, sorted[4].Rank
}

func isFlushFive(cards []Card) bool {
	if len(cards) != 5 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

func rankCounts(cards []Card) map[Rank]int {
	counts := make(map[Rank]int)
	for _, c := range cards {
		counts[c.Rank]++
	}
	return counts
}

func highestSuit(cards []Card) Suit {
	best := cards[0].Suit
	for _, c := range cards[1:] {
		if SuitOrder[c.Suit] > SuitOrder[best] {
			best = c.Suit
		}
	}
	return best
}

// suitOfRank returns the suit of the (unique) card holding the given
// rank. Straight ranks are all distinct, so this identifies the top card.
func suitOfRank(cards []Card, r Rank) Suit {
	for _, c := range cards {
		if c.Rank == r {
			return c.Suit
		}
	}
	return cards[0].Suit
}

func cardsOfRank(cards []Card, r Rank) []Card {
	var out []Card
	for _, c := range cards {
		if c.Rank == r {
			out = append(out, c)
		}
	}
	return out
}

// ClassifyFiveCard classifies a five-card play, returning nil for any hand
// that is not one of the five legal kinds. A plain high-card hand is
// rejected outright.
func ClassifyFiveCard(cards []Card) *FiveCardHand {
	if len(cards) != 5 {
		return nil
	}

	straight, highRank := isStraightFive(cards)
	flush := isFlushFive(cards)

	if straight && flush {
		return &FiveCardHand{
			Kind:        FiveStraightFlush,
			HighestRank: highRank,
			HighestSuit: suitOfRank(cards, highRank),
		}
	}

	counts := rankCounts(cards)
	if len(counts) == 2 {
		for r, n := range counts {
			switch n {
			case 4:
				var kicker Rank
				for k, m := range counts {
					if m == 1 {
						kicker = k
					}
				}
				return &FiveCardHand{
					Kind:            FiveFour,
					FourRank:        r,
					KickerRank:      kicker,
					FourHighestSuit: highestSuit(cardsOfRank(cards, r)),
				}
			case 3:
				var pair Rank
				for k, m := range counts {
					if m == 2 {
						pair = k
					}
				}
				if pair == "" {
					return nil
				}
				return &FiveCardHand{
					Kind:               FiveFullHouse,
					TripletRank:        r,
					PairRank:           pair,
					TripletHighestSuit: highestSuit(cardsOfRank(cards, r)),
				}
			}
		}
	}

	if flush {
		sorted := make([]Card, 5)
		copy(sorted, cards)
		sort.Slice(sorted, func(i, j int) bool {
			if d := RankOrder[sorted[i].Rank] - RankOrder[sorted[j].Rank]; d != 0 {
				return d < 0
			}
			return SuitOrder[sorted[i].Suit] > SuitOrder[sorted[j].Suit]
		})
		return &FiveCardHand{Kind: FiveFlush, SortedCards: sorted}
	}

	if straight {
		return &FiveCardHand{
			Kind:        FiveStraight,
			HighestRank: highRank,
			HighestSuit: suitOfRank(cards, highRank),
		}
	}

	return nil
}

// CompareFiveCard orders two classified five-card hands. Kinds rank
// STRAIGHT < FLUSH < FULL_HOUSE < FOUR < STRAIGHT_FLUSH; within a kind the
// kind-specific tie-break applies.
func CompareFiveCard(a, b *FiveCardHand) int {
	if d := fiveKindOrder[a.Kind] - fiveKindOrder[b.Kind]; d != 0 {
		return sign(d)
	}

	switch a.Kind {
	case FiveStraight, FiveStraightFlush:
		if d := straightRankOrder(a.HighestRank) - straightRankOrder(b.HighestRank); d != 0 {
			return sign(d)
		}
		return sign(SuitOrder[a.HighestSuit] - SuitOrder[b.HighestSuit])

	case FiveFlush:
		for i := 0; i < 5; i++ {
			ac, bc := a.SortedCards[i], b.SortedCards[i]
			if d := RankOrder[ac.Rank] - RankOrder[bc.Rank]; d != 0 {
				return sign(d)
			}
			if d := SuitOrder[bc.Suit] - SuitOrder[ac.Suit]; d != 0 {
				return sign(d)
			}
		}
		return 0

	case FiveFullHouse:
		if d := RankOrder[a.TripletRank] - RankOrder[b.TripletRank]; d != 0 {
			return sign(d)
		}
		if d := RankOrder[a.PairRank] - RankOrder[b.PairRank]; d != 0 {
			return sign(d)
		}
		return sign(SuitOrder[a.TripletHighestSuit] - SuitOrder[b.TripletHighestSuit])

	case FiveFour:
		if d := RankOrder[a.FourRank] - RankOrder[b.FourRank]; d != 0 {
			return sign(d)
		}
		if d := RankOrder[a.KickerRank] - RankOrder[b.KickerRank]; d != 0 {
			return sign(d)
		}
		return sign(SuitOrder[a.FourHighestSuit] - SuitOrder[b.FourHighestSuit])
	}
	return 0
}
