package domain

// StarterReason explains how the round starter was chosen.
type StarterReason string

const (
	// StarterWinner means the table is unchanged and the previous round's
	// winner opens.
	StarterWinner StarterReason = "WINNER"
	// StarterWeakestSingle means the holder of the single weakest card opens.
	StarterWeakestSingle StarterReason = "WEAKEST_SINGLE"
)

// DetermineStarter picks the player who opens the round. If the seated set
// is unchanged from the previous round and that round's winner is still
// seated, the winner starts. Otherwise the seat holding the weakest single
// card starts.
func DetermineStarter(hands map[string][]Card, seatedIDs []string, tableUnchanged bool, prevWinnerID string) (string, StarterReason) {
	if tableUnchanged && prevWinnerID != "" {
		for _, id := range seatedIDs {
			if id == prevWinnerID {
				return prevWinnerID, StarterWinner
			}
		}
	}

	var weakestID string
	var weakest Card
	for _, id := range seatedIDs {
		hand := hands[id]
		if len(hand) == 0 {
			continue
		}
		low := hand[0]
		for _, c := range hand[1:] {
			if CompareSingle(c, low) < 0 {
				low = c
			}
		}
		if weakestID == "" || CompareSingle(low, weakest) < 0 {
			weakestID = id
			weakest = low
		}
	}
	return weakestID, StarterWeakestSingle
}
