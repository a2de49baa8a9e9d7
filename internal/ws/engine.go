package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"gilii/internal/app"
	"gilii/internal/auth"
	"gilii/internal/domain"
	"gilii/internal/ports"
	"gilii/internal/protocol"
	"gilii/internal/room"
)

const statusWriteTimeout = 5 * time.Second

// Options tunes the engine's timers.
type Options struct {
	// IdleTimeout is how long an offline player may stay before removal.
	IdleTimeout time.Duration
	// NextRoundDelay is the pause between round end and the next deal.
	NextRoundDelay time.Duration
}

// Engine connects websocket clients to the game service. It tracks live
// connections per room, dispatches service events to the wire, and owns
// the turn, idle, and round-continuation timers.
//
// Lock order: the engine connection map and a room handle are never held
// at the same time.
type Engine struct {
	svc      *app.Service
	rooms    *room.Registry
	verifier *auth.Verifier
	status   ports.StatusStore
	log      *zap.Logger
	opts     Options

	mu    sync.RWMutex
	conns map[string]map[string]*client // roomID -> playerID -> client
}

func NewEngine(svc *app.Service, rooms *room.Registry, verifier *auth.Verifier, status ports.StatusStore, log *zap.Logger, opts Options) *Engine {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.NextRoundDelay <= 0 {
		opts.NextRoundDelay = 3 * time.Second
	}
	if status == nil {
		status = ports.NopStatusStore{}
	}
	return &Engine{
		svc:      svc,
		rooms:    rooms,
		verifier: verifier,
		status:   status,
		log:      log,
		opts:     opts,
		conns:    make(map[string]map[string]*client),
	}
}

// register records the authenticated client, displacing any previous
// connection for the same player. Returns the displaced client, if any.
func (e *Engine) register(c *client) *client {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomConns := e.conns[c.roomID]
	if roomConns == nil {
		roomConns = make(map[string]*client)
		e.conns[c.roomID] = roomConns
	}
	old := roomConns[c.playerID]
	roomConns[c.playerID] = c
	return old
}

// unregister removes the client if it is still the player's current
// connection. Returns false for connections that were already replaced.
func (e *Engine) unregister(c *client) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomConns, ok := e.conns[c.roomID]
	if !ok || roomConns[c.playerID] != c {
		return false
	}
	delete(roomConns, c.playerID)
	if len(roomConns) == 0 {
		delete(e.conns, c.roomID)
	}
	return true
}

func (e *Engine) hasConns(roomID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.conns[roomID]) > 0
}

// dropClient handles a closed connection. A replaced connection leaves
// the player's presence untouched.
//
// The connection map entry must be removed before the send channel
// closes: deliver holds the map read lock while enqueueing, so once
// unregister returns no broadcast can still reach this client.
func (e *Engine) dropClient(c *client) {
	if c.playerID == "" {
		c.shutdown()
		return
	}
	current := e.unregister(c)
	c.shutdown()
	if !current {
		return
	}

	h := e.rooms.Get(c.roomID)
	if h == nil {
		return
	}
	playerID := c.playerID
	h.With(func(r *domain.Room) {
		prevToken, prevPhase := r.TurnToken, r.Phase
		events := e.svc.Disconnect(r, playerID)
		e.dispatch(r, events)
		e.armTimers(h, r, prevToken, prevPhase)
	})
	h.SetIdleTimer(playerID, e.opts.IdleTimeout, func() {
		e.onIdleTimeout(h, playerID)
	})
}

func (e *Engine) onIdleTimeout(h *room.Handle, playerID string) {
	h.With(func(r *domain.Room) {
		prevToken, prevPhase := r.TurnToken, r.Phase
		events := e.svc.IdleRemove(r, playerID)
		if events == nil {
			return
		}
		e.dispatch(r, events)
		e.armTimers(h, r, prevToken, prevPhase)
	})
}

func (e *Engine) onTurnTimeout(h *room.Handle, token string) {
	h.With(func(r *domain.Room) {
		if r.Phase != domain.PhasePlaying || r.TurnToken != token {
			return
		}
		events := e.svc.AutoPass(r, r.CurrentTurnID)
		if events == nil {
			return
		}
		e.dispatch(r, events)
		e.armTimers(h, r, token, domain.PhasePlaying)
	})
}

func (e *Engine) onNextRound(h *room.Handle) {
	h.With(func(r *domain.Room) {
		prevToken, prevPhase := r.TurnToken, r.Phase
		events, err := e.svc.DealNextRound(r)
		if err != nil {
			e.log.Error("next round deal failed",
				zap.String("room_id", r.ID), zap.Error(err))
			return
		}
		e.dispatch(r, events)
		e.armTimers(h, r, prevToken, prevPhase)
	})
}

// armTimers reconciles the room's timer with its phase after an
// operation. The turn timer slot doubles as the round-continuation
// timer during ROUND_END. Each timer is armed only on the transition
// that starts it: a new turn token, or entering ROUND_END. Actions
// that leave the phase and token unchanged must not push the
// deadline back.
func (e *Engine) armTimers(h *room.Handle, r *domain.Room, prevToken string, prevPhase domain.Phase) {
	switch r.Phase {
	case domain.PhasePlaying:
		if r.TurnToken == prevToken {
			return
		}
		token := r.TurnToken
		h.SetTurnTimer(time.Until(r.TurnDeadline), func() {
			e.onTurnTimeout(h, token)
		})
	case domain.PhaseRoundEnd:
		if prevPhase == domain.PhaseRoundEnd {
			return
		}
		h.SetTurnTimer(e.opts.NextRoundDelay, func() {
			e.onNextRound(h)
		})
	default:
		h.StopTurnTimer()
	}
}

// dispatch turns service events into wire messages. Must run while
// holding the room lock so projections see a consistent snapshot.
func (e *Engine) dispatch(r *domain.Room, events []app.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case app.EventRoomState:
			e.deliver(r.ID, ev, roomStateMsg(r))
		case app.EventRoomOverview:
			e.deliver(r.ID, ev, roomOverviewMsg(r))
		case app.EventGameState:
			e.deliver(r.ID, ev, gameStateMsg(r))
		case app.EventScoreUpdate:
			e.deliver(r.ID, ev, scoreUpdateMsg(r))

		case app.EventRoundStart:
			p := ev.Payload.(app.RoundStartPayload)
			e.deliver(r.ID, ev, protocol.RoundStart{
				Type: protocol.TypeRoundStart, RoomID: r.ID, StartedAt: p.StartedAt})
		case app.EventDealt:
			p := ev.Payload.(app.DealtPayload)
			e.deliver(r.ID, ev, protocol.Dealt{
				Type:            protocol.TypeDealt,
				RoomID:          r.ID,
				StarterPlayerID: p.StarterID,
				Reason:          string(p.Reason),
				YourHand:        p.Hand,
				SeatedPlayerIDs: p.SeatedIDs,
			})
		case app.EventPersonalState:
			p := ev.Payload.(app.PersonalStatePayload)
			e.deliver(r.ID, ev, protocol.PersonalState{
				Type: protocol.TypePersonalState, RoomID: r.ID, YourHand: p.Hand})
		case app.EventRoundEnd:
			p := ev.Payload.(app.RoundEndPayload)
			e.deliver(r.ID, ev, protocol.RoundEnd{
				Type: protocol.TypeRoundEnd, RoomID: r.ID, WinnerPlayerID: p.WinnerID})
		case app.EventGameEnd:
			p := ev.Payload.(app.GameEndPayload)
			e.deliver(r.ID, ev, protocol.GameEnd{
				Type:           protocol.TypeGameEnd,
				RoomID:         r.ID,
				WinnerPlayerID: p.WinnerID,
				TotalScores:    totalScores(r),
			})
		case app.EventRules:
			p := ev.Payload.(app.RulesPayload)
			e.deliver(r.ID, ev, protocol.Rules{
				Type: protocol.TypeRules, RoomID: r.ID, ScoreLimit: p.ScoreLimit})

		case app.EventPlayerJoined:
			e.deliverPlayerEvent(r.ID, ev, protocol.TypePlayerJoined)
		case app.EventPlayerReconnected:
			e.deliverPlayerEvent(r.ID, ev, protocol.TypePlayerReconnected)
		case app.EventPlayerDisconnected:
			e.deliverPlayerEvent(r.ID, ev, protocol.TypePlayerDisconnected)
		case app.EventPlayerLeft:
			e.deliverPlayerEvent(r.ID, ev, protocol.TypePlayerLeft)
		case app.EventPlayerStoodUp:
			e.deliverPlayerEvent(r.ID, ev, protocol.TypePlayerStoodUp)

		case app.EventStatusPlaying:
			go e.publishStatus(r.ID, true)
		case app.EventStatusFinished:
			go e.publishStatus(r.ID, false)
		}
	}
}

func (e *Engine) deliverPlayerEvent(roomID string, ev app.Event, msgType string) {
	p := ev.Payload.(app.PlayerPayload)
	e.deliver(roomID, ev, protocol.PlayerEvent{
		Type: msgType, RoomID: roomID, PlayerID: p.PlayerID})
}

// deliver routes one message per the event's targeting.
func (e *Engine) deliver(roomID string, ev app.Event, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		e.log.Error("marshal failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	roomConns := e.conns[roomID]

	if len(ev.Recipients) > 0 {
		for _, id := range ev.Recipients {
			if c, ok := roomConns[id]; ok {
				c.enqueue(data)
			}
		}
		return
	}

	excluded := make(map[string]struct{}, len(ev.Exclude))
	for _, id := range ev.Exclude {
		excluded[id] = struct{}{}
	}
	for id, c := range roomConns {
		if _, skip := excluded[id]; skip {
			continue
		}
		c.enqueue(data)
	}
}

// sendTo marshals and queues a message for a single client.
func (e *Engine) sendTo(c *client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		e.log.Error("marshal failed", zap.Error(err))
		return
	}
	c.enqueue(data)
}

// publishStatus is fire and forget; gameplay never waits on the store.
func (e *Engine) publishStatus(roomID string, playing bool) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	var err error
	if playing {
		err = e.status.SetPlaying(ctx, roomID)
	} else {
		err = e.status.SetFinished(ctx, roomID)
	}
	if err != nil {
		e.log.Warn("status store update failed",
			zap.String("room_id", roomID), zap.Bool("playing", playing), zap.Error(err))
	}
}

// RunSweeper evicts idle lobby rooms until ctx is done. Rooms with live
// connections are never evicted.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			evicted := e.rooms.Sweep(interval, e.hasConns)
			for _, id := range evicted {
				e.log.Info("reaped idle room", zap.String("room_id", id))
			}
		case <-ctx.Done():
			return
		}
	}
}
