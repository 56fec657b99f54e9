package lobby

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

var ErrClosed = errors.New("lobby closed")

const DefaultTickInterval = time.Second

type Msg interface{ isLobbyMsg() }

// FromClient applies Cmd. Reply, if set, must be buffered; it receives nil
// or the rejection.
type FromClient struct {
	Cmd   engine.Command
	Reply chan error
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Events     []engine.Event
}

type Option func(*Lobby)

func WithClock(c clockwork.Clock) Option {
	return func(l *Lobby) { l.clock = c }
}

func WithTickInterval(d time.Duration) Option {
	return func(l *Lobby) {
		if d > 0 {
			l.tickEvery = d
		}
	}
}

func WithRandom(src engine.RandomSource) Option {
	return func(l *Lobby) { l.rng = src }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Lobby) { l.log = logger }
}

// Lobby owns one session. All state changes, match ticks included, happen
// on its loop goroutine.
type Lobby struct {
	inbox   chan Msg
	state   engine.State
	version int
	events  []engine.Event
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	clock     clockwork.Clock
	tickEvery time.Duration
	ticker    clockwork.Ticker
	rng       engine.RandomSource
	log       *zap.Logger
}

func NewLobby(parent context.Context, initial engine.State, opts ...Option) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:     make(chan Msg, 64), // Small buffer
		state:     initial,
		version:   0,
		clients:   make(map[string]chan Snapshot),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		clock:     clockwork.NewRealClock(),
		tickEvery: DefaultTickInterval,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// A restored session may already be mid-match.
	if initial.Phase == engine.PhaseWatching && initial.Match.Status == engine.MatchRunning {
		l.startClock()
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-l.tickC():
			// Teardown wins over a tick that became ready at the same time.
			if l.ctx.Err() != nil {
				l.shutdown()
				return
			}
			l.tick()

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				select {
				case msg.Outbox <- Snapshot{Version: l.version, State: l.state}:
					l.clients[msg.ClientID] = msg.Outbox
				default:
					// No room for the first snapshot: same fate as a slow client.
					close(msg.Outbox)
					l.log.Info("dropped client on join", zap.String("client", msg.ClientID))
				}

			case Leave:
				delete(l.clients, msg.ClientID)

			case FromClient:
				events, newState, err := engine.Apply(l.state, msg.Cmd)
				if err != nil {
					l.log.Debug("command rejected",
						zap.String("command", string(msg.Cmd.Type)),
						zap.String("code", engine.ErrorCode(err)),
						zap.Error(err))
					reply(msg.Reply, err)
					break
				}
				if len(events) > 0 {
					// Arm before broadcasting so anyone who sees the
					// snapshot also sees a running clock.
					if engine.ContainsEvent(events, engine.EvtMatchStarted) {
						l.startClock()
					}
					l.commit(events, newState)
				}
				reply(msg.Reply, nil)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state,
					Events:     slices.Clone(l.events),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) tick() {
	events, newState, err := engine.Advance(l.state, l.rng)
	if err != nil {
		l.log.Warn("tick on idle match", zap.Error(err))
		l.stopClock()
		return
	}
	l.commit(events, newState)

	if engine.ContainsEvent(events, engine.EvtMatchFinished) {
		l.stopClock()
		m := newState.Match
		l.log.Info("match finished",
			zap.String("winner", string(m.Winner)),
			zap.Int("score_team", m.ScoreTeam),
			zap.Int("score_opponent", m.ScoreOpponent),
			zap.String("bet", string(newState.Bet)))
	}
}

func (l *Lobby) commit(events []engine.Event, newState engine.State) {
	l.state = newState
	l.events = append(l.events, events...)
	l.version++
	l.broadcast(Snapshot{Version: l.version, State: l.state})
}

func (l *Lobby) tickC() <-chan time.Time {
	if l.ticker == nil {
		return nil
	}
	return l.ticker.Chan()
}

func (l *Lobby) startClock() {
	l.stopClock()
	l.ticker = l.clock.NewTicker(l.tickEvery)
	l.log.Debug("match clock started", zap.Duration("interval", l.tickEvery))
}

func (l *Lobby) stopClock() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
}

func (l *Lobby) shutdown() {
	l.stopClock()
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
			l.log.Info("dropped slow client", zap.String("client", id))
		}
	}
}

func reply(ch chan error, err error) {
	if ch == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the loop has exited and the clock is stopped.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Send delivers m unless the lobby has already shut down.
func (l *Lobby) Send(m Msg) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inbox <- m:
		return true
	case <-l.done:
		return false
	}
}

// Close tears the lobby down and waits for the loop to exit.
func (l *Lobby) Close() {
	l.cancel()
	<-l.done
}

// Do applies cmd and waits for the verdict.
func (l *Lobby) Do(ctx context.Context, cmd engine.Command) error {
	res := make(chan error, 1)
	if !l.Send(FromClient{Cmd: cmd, Reply: res}) {
		return ErrClosed
	}
	select {
	case err := <-res:
		return err
	case <-l.done:
		select {
		case err := <-res:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lobby) View(ctx context.Context) (View, error) {
	res := make(chan View, 1)
	if !l.Send(GetState{Reply: res}) {
		return View{}, ErrClosed
	}
	select {
	case v := <-res:
		return v, nil
	case <-l.done:
		select {
		case v := <-res:
			return v, nil
		default:
			return View{}, ErrClosed
		}
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
