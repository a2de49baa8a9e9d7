package domain

import "testing"

func card(r Rank, s Suit) Card { return Card{Rank: r, Suit: s} }

func TestCompareSingle(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Card
		expected int
	}{
		{"higher rank wins", card("4", "D"), card("3", "S"), 1},
		{"2 beats ace", card("2", "D"), card("A", "S"), 1},
		{"suit breaks rank tie", card("7", "H"), card("7", "C"), 1},
		{"spade is top suit", card("K", "S"), card("K", "H"), 1},
		{"diamond is bottom suit", card("9", "D"), card("9", "C"), -1},
		{"identical cards equal", card("J", "H"), card("J", "H"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareSingle(tt.a, tt.b); got != tt.expected {
				t.Errorf("CompareSingle(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestIsPairIsSet(t *testing.T) {
	if !IsPair([]Card{card("5", "H"), card("5", "D")}) {
		t.Errorf("expected pair")
	}
	if IsPair([]Card{card("5", "H"), card("6", "D")}) {
		t.Errorf("mixed ranks should not be a pair")
	}
	if !IsSet([]Card{card("Q", "H"), card("Q", "D"), card("Q", "S")}) {
		t.Errorf("expected set")
	}
	if IsSet([]Card{card("Q", "H"), card("Q", "D"), card("K", "S")}) {
		t.Errorf("mixed ranks should not be a set")
	}
}

func TestComparePair(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []Card
		expected int
	}{
		{
			"higher rank wins",
			[]Card{card("8", "D"), card("8", "C")},
			[]Card{card("7", "S"), card("7", "H")},
			1,
		},
		{
			"rank tie falls to strongest suit",
			[]Card{card("8", "S"), card("8", "D")},
			[]Card{card("8", "H"), card("8", "C")},
			1,
		},
		{
			"second suit breaks remaining tie",
			[]Card{card("8", "S"), card("8", "C")},
			[]Card{card("8", "S"), card("8", "D")},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComparePair(tt.a, tt.b); got != tt.expected {
				t.Errorf("ComparePair = %d, want %d", got, tt.expected)
			}
			if got := ComparePair(tt.b, tt.a); got != -tt.expected {
				t.Errorf("ComparePair reversed = %d, want %d", got, -tt.expected)
			}
		})
	}
}

func TestCompareSet(t *testing.T) {
	a := []Card{card("9", "S"), card("9", "H"), card("9", "D")}
	b := []Card{card("9", "H"), card("9", "C"), card("9", "D")}
	if got := CompareSet(a, b); got != 1 {
		t.Errorf("set with spade should win, got %d", got)
	}
	c := []Card{card("10", "D"), card("10", "C"), card("10", "H")}
	if got := CompareSet(c, a); got != 1 {
		t.Errorf("higher rank set should win, got %d", got)
	}
}

func TestIsUnbeatable(t *testing.T) {
	tests := []struct {
		name     string
		lp       *LastPlay
		expected bool
	}{
		{"nil play", nil, false},
		{
			"two of spades single",
			&LastPlay{Kind: PlaySingle, Cards: []Card{card("2", "S")}},
			true,
		},
		{
			"two of hearts single",
			&LastPlay{Kind: PlaySingle, Cards: []Card{card("2", "H")}},
			false,
		},
		{
			"four twos",
			&LastPlay{Kind: PlayFive, FiveKind: FiveFour, Cards: []Card{
				card("2", "S"), card("2", "H"), card("2", "C"), card("2", "D"), card("9", "H"),
			}},
			true,
		},
		{
			"four kings",
			&LastPlay{Kind: PlayFive, FiveKind: FiveFour, Cards: []Card{
				card("K", "S"), card("K", "H"), card("K", "C"), card("K", "D"), card("9", "H"),
			}},
			false,
		},
		{
			"royal straight flush in spades",
			&LastPlay{Kind: PlayFive, FiveKind: FiveStraightFlush, Cards: []Card{
				card("10", "S"), card("J", "S"), card("Q", "S"), card("K", "S"), card("A", "S"),
			}},
			true,
		},
		{
			"royal straight flush in hearts",
			&LastPlay{Kind: PlayFive, FiveKind: FiveStraightFlush, Cards: []Card{
				card("10", "H"), card("J", "H"), card("Q", "H"), card("K", "H"), card("A", "H"),
			}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnbeatable(tt.lp); got != tt.expected {
				t.Errorf("IsUnbeatable = %v, want %v", got, tt.expected)
			}
		})
	}
}
