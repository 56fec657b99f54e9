package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

// CreateLobby replies nil when Code is already taken.
type CreateLobby struct {
	Code  string
	State engine.State
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type EnsureLobby struct {
	Code  string
	State engine.State // only used if creation happens
	Reply chan *lobby.Lobby
}

// RemoveLobby tears the session down and forgets it.
type RemoveLobby struct {
	Code  string
	Reply chan bool // optional; true if the code existed
}

// Sweep drops sessions created before Now-MaxAge and any that already shut
// down on their own. Reply, if set, gets the number removed.
type Sweep struct {
	MaxAge time.Duration
	Now    time.Time
	Reply  chan int
}

type ShutdownHub struct{}

type entry struct {
	lobby   *lobby.Lobby
	created time.Time
}

type Hub struct {
	inbox     chan HubMsg
	lobbies   map[string]entry
	ctx       context.Context
	cancel    context.CancelFunc
	lobbyOpts []lobby.Option
	log       *zap.Logger
	now       func() time.Time
}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (Sweep) isHubMsg()       {}
func (ShutdownHub) isHubMsg() {}

type Option func(*Hub)

// WithLobbyOptions are applied to every lobby the hub creates.
func WithLobbyOptions(opts ...lobby.Option) Option {
	return func(h *Hub) { h.lobbyOpts = append(h.lobbyOpts, opts...) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(h *Hub) { h.log = logger }
}

func WithNow(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

func NewHub(parent context.Context, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]entry),
		ctx:     ctx,
		cancel:  cancel,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if _, taken := h.lobbies[msg.Code]; taken {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.ensure(msg.Code, msg.State)

			case GetLobby:
				var lb *lobby.Lobby // May be nil
				if e, ok := h.lobbies[msg.Code]; ok {
					lb = e.lobby
				}
				msg.Reply <- lb

			case EnsureLobby:
				msg.Reply <- h.ensure(msg.Code, msg.State)

			case RemoveLobby:
				e, ok := h.lobbies[msg.Code]
				if ok {
					e.lobby.Close()
					delete(h.lobbies, msg.Code)
					h.log.Info("session removed", zap.String("code", msg.Code))
				}
				if msg.Reply != nil {
					msg.Reply <- ok
				}

			case Sweep:
				n := h.sweep(msg.Now.Add(-msg.MaxAge))
				if msg.Reply != nil {
					msg.Reply <- n
				}

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) ensure(code string, state engine.State) *lobby.Lobby {
	if e, ok := h.lobbies[code]; ok {
		return e.lobby
	}
	opts := append([]lobby.Option{lobby.WithLogger(h.log.With(zap.String("code", code)))}, h.lobbyOpts...)
	lb := lobby.NewLobby(h.ctx, state, opts...)
	h.lobbies[code] = entry{lobby: lb, created: h.now()}
	h.log.Info("session created", zap.String("code", code))
	return lb
}

func (h *Hub) sweep(cutoff time.Time) int {
	removed := 0
	for code, e := range h.lobbies {
		select {
		case <-e.lobby.Done():
		default:
			if !e.created.Before(cutoff) {
				continue
			}
			e.lobby.Close()
		}
		delete(h.lobbies, code)
		removed++
	}
	if removed > 0 {
		h.log.Info("sessions swept", zap.Int("removed", removed), zap.Int("remaining", len(h.lobbies)))
	}
	return removed
}

func (h *Hub) shutdown() {
	for _, e := range h.lobbies {
		e.lobby.Close()
	}
	clear(h.lobbies)
}
