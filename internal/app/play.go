package app

import "gilii/internal/domain"

// Play validates and executes a PLAY action. Checks run in a fixed order
// so each rejectable condition maps to one distinct error.
func (s *Service) Play(r *domain.Room, actorID string, cards []domain.Card) ([]Event, error) {
	if r.Phase != domain.PhasePlaying {
		return nil, ErrInvalidPhase
	}
	if r.Hands == nil || r.CurrentTurnID == "" || r.Passed == nil {
		return nil, ErrGameStateInvalid
	}
	if actorID != r.CurrentTurnID {
		return nil, ErrNotYourTurn
	}

	n := len(cards)
	if n != 1 && n != 2 && n != 3 && n != 5 {
		return nil, ErrInvalidPlaySize
	}

	hand, ok := r.Hands[actorID]
	if !ok {
		return nil, ErrHandNotFound
	}
	seen := make(map[domain.Card]struct{}, n)
	for _, c := range cards {
		if !inHand(hand, c) {
			return nil, ErrCardNotInHand
		}
		if _, dup := seen[c]; dup {
			return nil, ErrDuplicateCards
		}
		seen[c] = struct{}{}
	}

	kind, fiveHand, err := classifyPlay(cards)
	if err != nil {
		return nil, err
	}

	if r.LastPlay != nil {
		if n != len(r.LastPlay.Cards) {
			return nil, ErrMustMatchCount
		}
		cmp, err := comparePlays(kind, cards, fiveHand, r.LastPlay)
		if err != nil {
			return nil, err
		}
		if cmp <= 0 {
			return nil, ErrPlayTooWeak
		}
	}

	r.Hands[actorID] = domain.RemoveCards(hand, cards)
	lp := &domain.LastPlay{PlayerID: actorID, Kind: kind, Cards: append([]domain.Card{}, cards...)}
	if fiveHand != nil {
		lp.FiveKind = fiveHand.Kind
	}
	r.LastPlay = lp
	delete(r.Passed, actorID)

	events := []Event{unicast(EventPersonalState, PersonalStatePayload{
		PlayerID: actorID,
		Hand:     r.Hands[actorID],
	}, actorID)}

	if len(r.Hands[actorID]) == 0 {
		events = append(events,
			broadcast(EventGameState, nil),
			broadcast(EventRoomOverview, nil),
		)
		return append(events, s.settle(r, actorID)...), nil
	}

	// An unbeatable play passes every other cardholder at once.
	if domain.IsUnbeatable(r.LastPlay) {
		for _, id := range r.SeatedIDs() {
			if id != actorID && len(r.Hands[id]) > 0 {
				r.Passed[id] = struct{}{}
			}
		}
	}

	if !s.checkTrickEnd(r) {
		r.CurrentTurnID = r.NextActivePlayer(actorID)
		s.newTurn(r)
	}

	return append(events,
		broadcast(EventGameState, nil),
		broadcast(EventRoomOverview, nil),
	), nil
}

// Pass validates and executes a PASS action. The trick starter must play.
func (s *Service) Pass(r *domain.Room, actorID string) ([]Event, error) {
	if r.Phase != domain.PhasePlaying {
		return nil, ErrInvalidPhase
	}
	if r.Hands == nil || r.CurrentTurnID == "" || r.Passed == nil {
		return nil, ErrGameStateInvalid
	}
	if actorID != r.CurrentTurnID {
		return nil, ErrNotYourTurn
	}
	if r.LastPlay == nil {
		return nil, ErrPassNotAllowedStarter
	}

	r.Passed[actorID] = struct{}{}

	if !s.checkTrickEnd(r) {
		r.CurrentTurnID = r.NextActivePlayer(actorID)
		s.newTurn(r)
	}

	return []Event{
		broadcast(EventGameState, nil),
		broadcast(EventRoomOverview, nil),
	}, nil
}

// AutoPass handles a turn-timer expiry for the given player. The starter
// forfeits the trick lead instead of passing. The caller has already
// validated the turn token.
func (s *Service) AutoPass(r *domain.Room, playerID string) []Event {
	if r.Phase != domain.PhasePlaying || r.CurrentTurnID != playerID {
		return nil
	}

	if r.LastPlay == nil {
		// Starter timed out: the lead moves to the next player and the
		// trick restarts fresh.
		r.CurrentTurnID = r.NextActivePlayer(playerID)
		r.Passed = make(map[string]struct{})
		s.newTurn(r)
		return []Event{
			broadcast(EventGameState, nil),
			broadcast(EventRoomOverview, nil),
		}
	}

	r.Passed[playerID] = struct{}{}
	if !s.checkTrickEnd(r) {
		r.CurrentTurnID = r.NextActivePlayer(playerID)
		s.newTurn(r)
	}
	return []Event{
		broadcast(EventGameState, nil),
		broadcast(EventRoomOverview, nil),
	}
}

// checkTrickEnd ends the trick when every cardholder other than the lead
// has passed: the lead keeps the turn and the trick resets.
func (s *Service) checkTrickEnd(r *domain.Room) bool {
	if r.LastPlay == nil {
		return false
	}

	active := r.ActiveCount()
	passedActive := 0
	for id := range r.Passed {
		if len(r.Hands[id]) > 0 {
			passedActive++
		}
	}
	if passedActive < active-1 {
		return false
	}

	r.CurrentTurnID = r.LastPlay.PlayerID
	r.LastPlay = nil
	r.Passed = make(map[string]struct{})
	s.newTurn(r)
	return true
}

func classifyPlay(cards []domain.Card) (domain.PlayKind, *domain.FiveCardHand, error) {
	switch len(cards) {
	case 1:
		return domain.PlaySingle, nil, nil
	case 2:
		if !domain.IsPair(cards) {
			return "", nil, ErrInvalidPair
		}
		return domain.PlayPair, nil, nil
	case 3:
		if !domain.IsSet(cards) {
			return "", nil, ErrInvalidSet
		}
		return domain.PlaySet, nil, nil
	default:
		hand := domain.ClassifyFiveCard(cards)
		if hand == nil {
			return "", nil, ErrInvalidFiveCard
		}
		return domain.PlayFive, hand, nil
	}
}

func comparePlays(kind domain.PlayKind, cards []domain.Card, fiveHand *domain.FiveCardHand, last *domain.LastPlay) (int, error) {
	switch kind {
	case domain.PlaySingle:
		return domain.CompareSingle(cards[0], last.Cards[0]), nil
	case domain.PlayPair:
		return domain.ComparePair(cards, last.Cards), nil
	case domain.PlaySet:
		return domain.CompareSet(cards, last.Cards), nil
	default:
		if last.Kind != domain.PlayFive {
			return 0, ErrGameStateInvalid
		}
		lastHand := domain.ClassifyFiveCard(last.Cards)
		if lastHand == nil {
			return 0, ErrGameStateInvalid
		}
		return domain.CompareFiveCard(fiveHand, lastHand), nil
	}
}

func inHand(hand []domain.Card, c domain.Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}
