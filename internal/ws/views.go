package ws

import (
	"gilii/internal/domain"
	"gilii/internal/protocol"
)

// View builders project room state onto wire messages. They must run
// while holding the room lock and never leak another player's hand.

func seatsInfo(r *domain.Room) []protocol.SeatInfo {
	out := make([]protocol.SeatInfo, len(r.Seats))
	for i, seat := range r.Seats {
		info := protocol.SeatInfo{
			SeatIndex: seat.Index,
			Status:    string(seat.Status),
		}
		if seat.PlayerID != "" {
			id := seat.PlayerID
			info.PlayerID = &id
		}
		if seat.OfflineSince != 0 {
			since := seat.OfflineSince
			info.OfflineSince = &since
		}
		out[i] = info
	}
	return out
}

func handsCount(r *domain.Room) map[string]int {
	out := make(map[string]int, len(r.Hands))
	for id, hand := range r.Hands {
		out[id] = len(hand)
	}
	return out
}

func totalScores(r *domain.Room) map[string]int {
	out := make(map[string]int, len(r.Scores))
	for id, score := range r.Scores {
		out[id] = score
	}
	return out
}

func eliminatedIDs(r *domain.Room) []string {
	out := make([]string, 0, len(r.Eliminated))
	for _, id := range r.JoinOrder {
		if _, ok := r.Eliminated[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func passedIDs(r *domain.Room) []string {
	out := make([]string, 0, len(r.Passed))
	for _, id := range r.JoinOrder {
		if _, ok := r.Passed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func queueIDs(r *domain.Room) []string {
	return append([]string{}, r.Queue...)
}

func roomStateMsg(r *domain.Room) protocol.RoomState {
	players := make([]protocol.PlayerInfo, 0, len(r.JoinOrder))
	for _, id := range r.JoinOrder {
		p := r.Players[id]
		if p == nil || p.Status == domain.PlayerRemoved {
			continue
		}
		players = append(players, protocol.PlayerInfo{PlayerID: id, IsReady: p.Ready})
	}
	return protocol.RoomState{Type: protocol.TypeRoomState, RoomID: r.ID, Players: players}
}

func gameStateMsg(r *domain.Room) protocol.GameState {
	return protocol.GameState{
		Type:                protocol.TypeGameState,
		RoomID:              r.ID,
		Seats:               seatsInfo(r),
		CurrentTurnPlayerID: r.CurrentTurnID,
		LastPlay:            r.LastPlay,
		HandsCount:          handsCount(r),
		PassedPlayerIDs:     passedIDs(r),
		TurnID:              r.TurnToken,
		TurnDeadlineAt:      r.TurnDeadline.UnixMilli(),
	}
}

func roomOverviewMsg(r *domain.Room) protocol.RoomOverview {
	msg := protocol.RoomOverview{
		Type:           protocol.TypeRoomOverview,
		RoomID:         r.ID,
		Phase:          string(r.Phase),
		Seats:          seatsInfo(r),
		QueuePlayerIDs: queueIDs(r),
		TotalScores:    totalScores(r),
		Eliminated:     eliminatedIDs(r),
	}
	if r.Phase == domain.PhasePlaying {
		msg.CurrentTurnPlayerID = r.CurrentTurnID
		msg.TurnID = r.TurnToken
		msg.TurnDeadlineAt = r.TurnDeadline.UnixMilli()
		msg.HandsCount = handsCount(r)
	}
	return msg
}

func scoreUpdateMsg(r *domain.Room) protocol.ScoreUpdate {
	return protocol.ScoreUpdate{
		Type:        protocol.TypeScoreUpdate,
		RoomID:      r.ID,
		TotalScores: totalScores(r),
		Eliminated:  eliminatedIDs(r),
	}
}

// syncStateMsg is the full resume snapshot for one player, including
// their private hand.
func syncStateMsg(r *domain.Room, playerID string) protocol.SyncState {
	msg := protocol.SyncState{
		Type:                protocol.TypeSyncState,
		RoomID:              r.ID,
		Phase:               string(r.Phase),
		Seats:               seatsInfo(r),
		QueuePlayerIDs:      queueIDs(r),
		CurrentTurnPlayerID: r.CurrentTurnID,
		LastPlay:            r.LastPlay,
		HandsCount:          handsCount(r),
		TotalScores:         totalScores(r),
		Eliminated:          eliminatedIDs(r),
		YourHand:            []domain.Card{},
		StarterPlayerID:     r.StarterID,
		StarterReason:       string(r.StarterReason),
		TurnID:              r.TurnToken,
		ScoreLimit:          r.ScoreLimit,
	}
	if !r.TurnDeadline.IsZero() {
		msg.TurnDeadlineAt = r.TurnDeadline.UnixMilli()
	}
	if hand, ok := r.Hands[playerID]; ok {
		msg.YourHand = append([]domain.Card{}, hand...)
	}
	return msg
}
