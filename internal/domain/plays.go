package domain

import "sort"

// PlayKind identifies the shape of a play by card count.
type PlayKind string

const (
	PlaySingle PlayKind = "SINGLE"
	PlayPair   PlayKind = "PAIR"
	PlaySet    PlayKind = "SET"
	PlayFive   PlayKind = "FIVE"
)

// LastPlay records the play currently leading the trick.
type LastPlay struct {
	PlayerID string   `json:"playerId"`
	Kind     PlayKind `json:"kind"`
	FiveKind FiveKind `json:"fiveKind,omitempty"`
	Cards    []Card   `json:"cards"`
}

// IsPair reports whether the cards form a pair (two of the same rank).
func IsPair(cards []Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}

// IsSet reports whether the cards form a set (three of the same rank).
func IsSet(cards []Card) bool {
	return len(cards) == 3 && cards[0].Rank == cards[1].Rank && cards[1].Rank == cards[2].Rank
}

// ComparePair orders two pairs by rank, then by suits compared
// strongest-first. Both inputs must already be valid pairs.
func ComparePair(a, b []Card) int {
	if d := RankOrder[a[0].Rank] - RankOrder[b[0].Rank]; d != 0 {
		return sign(d)
	}
	aSuits := suitsDescending(a)
	bSuits := suitsDescending(b)
	for i := range aSuits {
		if d := aSuits[i] - bSuits[i]; d != 0 {
			return sign(d)
		}
	}
	return 0
}

// CompareSet orders two sets by rank, then by the highest suit present.
// Both inputs must already be valid sets.
func CompareSet(a, b []Card) int {
	if d := RankOrder[a[0].Rank] - RankOrder[b[0].Rank]; d != 0 {
		return sign(d)
	}
	return sign(highestSuitOrder(a) - highestSuitOrder(b))
}

// IsUnbeatable reports whether a play forces every other active player to
// pass: the single 2 of spades, four 2s, or the 10-J-Q-K-A straight flush
// in spades.
func IsUnbeatable(lp *LastPlay) bool {
	if lp == nil {
		return false
	}

	if lp.Kind == PlaySingle && len(lp.Cards) == 1 {
		c := lp.Cards[0]
		return c.Rank == "2" && c.Suit == SuitSpades
	}

	if lp.Kind != PlayFive {
		return false
	}

	switch lp.FiveKind {
	case FiveFour:
		twos := 0
		for _, c := range lp.Cards {
			if c.Rank == "2" {
				twos++
			}
		}
		return twos == 4
	case FiveStraightFlush:
		want := map[Rank]bool{"10": false, "J": false, "Q": false, "K": false, "A": false}
		for _, c := range lp.Cards {
			if c.Suit != SuitSpades {
				return false
			}
			if _, ok := want[c.Rank]; ok {
				want[c.Rank] = true
			}
		}
		for _, seen := range want {
			if !seen {
				return false
			}
		}
		return true
	}
	return false
}

func suitsDescending(cards []Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = SuitOrder[c.Suit]
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func highestSuitOrder(cards []Card) int {
	best := 0
	for _, c := range cards {
		if o := SuitOrder[c.Suit]; o > best {
			best = o
		}
	}
	return best
}
