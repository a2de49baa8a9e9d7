package app

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gilii/internal/domain"
)

func newTestService(seed int64) *Service {
	svc := NewService(rand.New(rand.NewSource(seed)), 30*time.Second)
	token := 0
	svc.newToken = func() string {
		token++
		return fmt.Sprintf("turn-%d", token)
	}
	return svc
}

func newLobby(t *testing.T, svc *Service, playerIDs ...string) *domain.Room {
	t.Helper()
	r := domain.NewRoom("r1")
	for _, id := range playerIDs {
		reconnect, _ := svc.Join(r, id)
		require.False(t, reconnect)
		svc.SetReady(r, id, true)
	}
	return r
}

func startGame(t *testing.T, svc *Service, playerIDs ...string) (*domain.Room, []Event) {
	t.Helper()
	r := newLobby(t, svc, playerIDs...)
	events, err := svc.StartGame(r, playerIDs[0])
	require.NoError(t, err)
	return r, events
}

func card(r domain.Rank, s domain.Suit) domain.Card { return domain.Card{Rank: r, Suit: s} }

func TestJoinAssignsOwnerAndScores(t *testing.T) {
	svc := newTestService(1)
	r := domain.NewRoom("r1")

	reconnect, events := svc.Join(r, "p1")
	require.False(t, reconnect)
	require.Equal(t, "p1", r.OwnerID)
	require.Equal(t, 0, r.Scores["p1"])
	require.Equal(t, EventPlayerJoined, events[0].Kind)
	require.Equal(t, []string{"p1"}, events[0].Exclude)

	reconnect, _ = svc.Join(r, "p2")
	require.False(t, reconnect)
	require.Equal(t, "p1", r.OwnerID)
}

func TestJoinAgainIsReconnect(t *testing.T) {
	svc := newTestService(1)
	r := domain.NewRoom("r1")
	svc.Join(r, "p1")
	r.Players["p1"].Status = domain.PlayerOffline

	reconnect, events := svc.Join(r, "p1")
	require.True(t, reconnect)
	require.Equal(t, domain.PlayerActive, r.Players["p1"].Status)
	require.Equal(t, EventPlayerReconnected, events[0].Kind)
}

func TestJoinDuringPlayQueues(t *testing.T) {
	svc := newTestService(1)
	r, _ := startGame(t, svc, "p1", "p2")

	svc.Join(r, "p5")
	require.Equal(t, []string{"p5"}, r.Queue)
	require.Nil(t, r.SeatOf("p5"))
}

func TestSetRulesValidation(t *testing.T) {
	svc := newTestService(1)
	r := newLobby(t, svc, "p1", "p2")

	_, err := svc.SetRules(r, "p2", 30)
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.SetRules(r, "p1", 0)
	require.ErrorIs(t, err, ErrInvalidScoreLimit)
	_, err = svc.SetRules(r, "p1", 61)
	require.ErrorIs(t, err, ErrInvalidScoreLimit)

	events, err := svc.SetRules(r, "p1", 30)
	require.NoError(t, err)
	require.Equal(t, 30, r.ScoreLimit)
	require.Equal(t, EventRules, events[0].Kind)

	r.Phase = domain.PhasePlaying
	_, err = svc.SetRules(r, "p1", 20)
	require.ErrorIs(t, err, ErrInvalidPhase)
}

func TestStartGameValidation(t *testing.T) {
	svc := newTestService(1)
	r := domain.NewRoom("r1")
	svc.Join(r, "p1")

	_, err := svc.StartGame(r, "p2")
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.StartGame(r, "p1")
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	svc.Join(r, "p2")
	_, err = svc.StartGame(r, "p1")
	require.ErrorIs(t, err, ErrPlayersNotReady)

	svc.SetReady(r, "p1", true)
	svc.SetReady(r, "p2", true)
	events, err := svc.StartGame(r, "p1")
	require.NoError(t, err)
	require.Equal(t, domain.PhasePlaying, r.Phase)
	require.Equal(t, EventRoundStart, events[0].Kind)

	_, err = svc.StartGame(r, "p1")
	require.ErrorIs(t, err, ErrInvalidPhase)
}

func TestStartGameDealsDisjointHands(t *testing.T) {
	svc := newTestService(42)
	r, events := startGame(t, svc, "p1", "p2")

	require.Len(t, r.SeatedIDs(), 2)
	seen := make(map[domain.Card]string)
	dealt := 0
	for _, ev := range events {
		if ev.Kind != EventDealt {
			continue
		}
		dealt++
		payload := ev.Payload.(DealtPayload)
		require.Len(t, payload.Hand, 13)
		require.Equal(t, []string{payload.PlayerID}, ev.Recipients)
		require.Equal(t, r.StarterID, payload.StarterID)
		for _, c := range payload.Hand {
			owner, dup := seen[c]
			require.Falsef(t, dup, "card %v dealt to both %s and %s", c, owner, payload.PlayerID)
			seen[c] = payload.PlayerID
		}
	}
	require.Equal(t, 2, dealt)

	require.Equal(t, domain.StarterWeakestSingle, r.StarterReason)
	require.Equal(t, r.StarterID, r.CurrentTurnID)
	require.NotEmpty(t, r.TurnToken)
	require.False(t, r.TurnDeadline.IsZero())
	require.Nil(t, r.LastPlay)
}

func TestFifthPlayerQueuedAtFirstDeal(t *testing.T) {
	svc := newTestService(3)
	r, _ := startGame(t, svc, "p1", "p2", "p3", "p4", "p5")

	require.Equal(t, []string{"p1", "p2", "p3", "p4"}, r.SeatedIDs())
	require.Equal(t, []string{"p5"}, r.Queue)
}

func TestDealNextRoundOnlyInRoundEnd(t *testing.T) {
	svc := newTestService(1)
	r := newLobby(t, svc, "p1", "p2")

	events, err := svc.DealNextRound(r)
	require.NoError(t, err)
	require.Nil(t, events)
	require.Equal(t, domain.PhaseLobby, r.Phase)
}
