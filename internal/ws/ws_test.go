package ws

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gilii/internal/app"
	"gilii/internal/auth"
	"gilii/internal/domain"
	"gilii/internal/protocol"
	"gilii/internal/room"
)

const testSecret = "test-secret"

func token(t *testing.T, playerID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": playerID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *Engine) {
	t.Helper()
	svc := app.NewService(rand.New(rand.NewSource(99)), 30*time.Second)
	engine := NewEngine(svc, room.NewRegistry(), auth.NewVerifier(testSecret),
		nil, zaptest.NewLogger(t), opts)
	srv := httptest.NewServer(engine.Handler())
	t.Cleanup(srv.Close)
	return srv, engine
}

type testConn struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, srv *httptest.Server) *testConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testConn{t: t, conn: conn}
}

func (c *testConn) send(msg any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// await reads frames until one of the wanted type arrives.
func (c *testConn) await(msgType string) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(c.t, c.conn.SetReadDeadline(deadline))
	for {
		_, data, err := c.conn.ReadMessage()
		require.NoErrorf(c.t, err, "waiting for %s", msgType)
		var msg map[string]any
		require.NoError(c.t, json.Unmarshal(data, &msg))
		if msg["type"] == msgType {
			return msg
		}
	}
}

func hello(t *testing.T, c *testConn, roomID, playerID string) {
	t.Helper()
	c.send(map[string]any{"type": "HELLO", "roomId": roomID, "accessToken": token(t, playerID)})
	welcome := c.await("WELCOME")
	require.Equal(t, playerID, welcome["playerId"])
	c.await("SYNC_STATE")
}

func TestPreAuthAndBadFrames(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	c := dialWS(t, srv)

	c.send(map[string]any{"type": "READY", "roomId": "r1", "isReady": true})
	msg := c.await("ERROR")
	require.Equal(t, "NOT_AUTHENTICATED", msg["code"])

	c.send(map[string]any{"type": "WIBBLE"})
	msg = c.await("ERROR")
	require.Equal(t, "INVALID_MESSAGE", msg["code"])
}

func TestHelloRejectsBadToken(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	c := dialWS(t, srv)

	c.send(map[string]any{"type": "HELLO", "roomId": "r1", "accessToken": "nope"})
	msg := c.await("ERROR")
	require.Equal(t, "AUTH_INVALID", msg["code"])
}

func TestRoomMismatchRejected(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	c := dialWS(t, srv)
	hello(t, c, "r1", "p1")

	c.send(map[string]any{"type": "READY", "roomId": "other", "isReady": true})
	msg := c.await("ERROR")
	require.Equal(t, "INVALID_ROOM", msg["code"])
}

func TestFullGameFlow(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	c1 := dialWS(t, srv)
	c2 := dialWS(t, srv)

	hello(t, c1, "r1", "p1")
	hello(t, c2, "r1", "p2")
	c2.await("ROOM_STATE")

	c1.send(map[string]any{"type": "READY", "roomId": "r1", "isReady": true})
	c2.send(map[string]any{"type": "READY", "roomId": "r1", "isReady": true})
	c1.await("ROOM_STATE")

	// Only the owner may start.
	c2.send(map[string]any{"type": "START_GAME", "roomId": "r1"})
	msg := c2.await("ACTION_ERROR")
	require.Equal(t, "NOT_OWNER", msg["code"])

	c1.send(map[string]any{"type": "START_GAME", "roomId": "r1"})
	c1.await("ROUND_START")

	dealt1 := c1.await("DEALT")
	dealt2 := c2.await("DEALT")
	require.Equal(t, "WEAKEST_SINGLE", dealt1["reason"])
	require.Equal(t, dealt1["starterPlayerId"], dealt2["starterPlayerId"])
	require.Len(t, dealt1["yourHand"], 13)

	starter := dealt1["starterPlayerId"].(string)
	var sc, oc *testConn
	var hand []any
	if starter == "p1" {
		sc, oc, hand = c1, c2, dealt1["yourHand"].([]any)
	} else {
		sc, oc, hand = c2, c1, dealt2["yourHand"].([]any)
	}

	state := sc.await("GAME_STATE")
	require.Equal(t, starter, state["currentTurnPlayerId"])
	oc.await("GAME_STATE")

	// Any single is a legal lead.
	sc.send(map[string]any{"type": "PLAY", "roomId": "r1", "cards": []any{hand[0]}})
	sc.await("PERSONAL_STATE")
	sc.await("GAME_STATE")
	state = oc.await("GAME_STATE")
	require.NotEqual(t, starter, state["currentTurnPlayerId"])
	require.NotNil(t, state["lastPlay"])

	// With two players, one pass ends the trick and the lead returns.
	oc.send(map[string]any{"type": "PASS", "roomId": "r1"})
	state = sc.await("GAME_STATE")
	require.Equal(t, starter, state["currentTurnPlayerId"])
	require.Nil(t, state["lastPlay"])

	// SYNC_REQUEST returns the private snapshot.
	sc.send(map[string]any{"type": "SYNC_REQUEST", "roomId": "r1"})
	snap := sc.await("SYNC_STATE")
	require.Equal(t, "playing", snap["phase"])
	require.Len(t, snap["yourHand"], 12)
}

func TestDisconnectAndIdleRemoval(t *testing.T) {
	srv, _ := newTestServer(t, Options{IdleTimeout: 150 * time.Millisecond})
	c1 := dialWS(t, srv)
	c2 := dialWS(t, srv)

	hello(t, c1, "r1", "p1")
	hello(t, c2, "r1", "p2")

	c1.send(map[string]any{"type": "READY", "roomId": "r1", "isReady": true})
	c2.send(map[string]any{"type": "READY", "roomId": "r1", "isReady": true})
	c1.send(map[string]any{"type": "START_GAME", "roomId": "r1"})
	c1.await("GAME_STATE")

	require.NoError(t, c2.conn.Close())

	msg := c1.await("PLAYER_DISCONNECTED")
	require.Equal(t, "p2", msg["playerId"])

	// Idle window elapses without a reconnect: removal ends the game in
	// p1's favor.
	c1.await("PLAYER_LEFT")
	end := c1.await("GAME_END")
	require.Equal(t, "p1", end["winnerPlayerId"])
}

func TestReconnectReplacesConnection(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	c1 := dialWS(t, srv)
	hello(t, c1, "r1", "p1")

	c2 := dialWS(t, srv)
	c2.send(map[string]any{"type": "HELLO", "roomId": "r1", "accessToken": token(t, "p1")})
	c2.await("WELCOME")

	// The first connection gets the REPLACED close code.
	require.NoError(t, c1.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, _, err := c1.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			require.ErrorAs(t, err, &closeErr)
			require.Equal(t, 4000, closeErr.Code)
			require.Equal(t, "REPLACED", closeErr.Text)
			break
		}
	}
}

// A drop must pull the connection out of the map before its send
// channel closes, or a concurrent broadcast can write to a closed
// channel and take the process down.
func TestBroadcastRacingDropDoesNotPanic(t *testing.T) {
	_, engine := newTestServer(t, Options{})
	ev := app.Event{Kind: app.EventPlayerJoined, Payload: app.PlayerPayload{PlayerID: "p2"}}

	for i := 0; i < 500; i++ {
		c := &client{engine: engine, send: make(chan []byte, 1), playerID: "p1", roomID: "race"}
		engine.register(c)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			engine.dropClient(c)
		}()
		go func() {
			defer wg.Done()
			engine.deliverPlayerEvent("race", ev, protocol.TypePlayerJoined)
		}()
		wg.Wait()
	}
}

func TestNextRoundDealsDespiteSteadyActions(t *testing.T) {
	svc := app.NewService(rand.New(rand.NewSource(5)), 30*time.Second)
	registry := room.NewRegistry()
	engine := NewEngine(svc, registry, auth.NewVerifier(testSecret),
		nil, zaptest.NewLogger(t), Options{NextRoundDelay: 100 * time.Millisecond})
	h := registry.GetOrCreate("r1")
	t.Cleanup(h.StopTurnTimer)

	h.With(func(r *domain.Room) {
		svc.Join(r, "p1")
		svc.Join(r, "p2")
		svc.SetReady(r, "p1", true)
		svc.SetReady(r, "p2", true)
		_, err := svc.StartGame(r, "p1")
		require.NoError(t, err)
		r.Hands = map[string][]domain.Card{
			"p1": {{Rank: "3", Suit: "D"}},
			"p2": {{Rank: "4", Suit: "D"}, {Rank: "5", Suit: "D"}},
		}
		r.CurrentTurnID = "p1"
		r.LastPlay = nil
		r.Passed = make(map[string]struct{})

		prevToken, prevPhase := r.TurnToken, r.Phase
		events, err := svc.Play(r, "p1", r.Hands["p1"])
		require.NoError(t, err)
		require.Equal(t, domain.PhaseRoundEnd, r.Phase)
		engine.dispatch(r, events)
		engine.armTimers(h, r, prevToken, prevPhase)
	})

	// Keep the room busy with accepted actions at a faster cadence than
	// the continuation delay. The next deal must still happen on time.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var phase domain.Phase
		h.With(func(r *domain.Room) {
			phase = r.Phase
			if phase != domain.PhaseRoundEnd {
				return
			}
			prevToken, prevPhase := r.TurnToken, r.Phase
			engine.dispatch(r, svc.SetReady(r, "p2", true))
			engine.armTimers(h, r, prevToken, prevPhase)
		})
		if phase == domain.PhasePlaying {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("next round never dealt while the room stayed busy")
}

func TestPlainHTTPRejected(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
