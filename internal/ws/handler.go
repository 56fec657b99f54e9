package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/hub"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/lobby"
	"github.com/DoyleJ11/fantasy-cricket-backend/pkg/types"
)

const writeTimeout = 3 * time.Second

type Options struct {
	// OriginPatterns are host patterns allowed to connect cross-origin,
	// e.g. "localhost:3000".
	OriginPatterns []string
	Logger         *zap.Logger
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("code", code), zap.String("client", clientID))

		out := make(chan lobby.Snapshot, 8)
		if !lb.Send(lobby.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		}
		defer lb.Send(lobby.Leave{ClientID: clientID})
		log.Debug("client joined")

		notices := make(chan types.ServerMessage, 4)

		// Writer goroutine; the only place that writes to conn.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				var msg types.ServerMessage
				select {
				case <-writeCtx.Done():
					return
				case snap, ok := <-out:
					if !ok {
						// Lobby dropped us or shut down.
						conn.Close(websocket.StatusGoingAway, "session closed")
						return
					}
					msg = types.Snapshot(snap.Version, snap.State)
				case msg = <-notices:
				}

				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error("encode server message", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					log.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("websocket read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				notify(notices, types.ServerMessage{
					Type:   types.TypeNotice,
					Notice: &types.Notice{Code: "bad_json", Message: err.Error()},
				})
				continue
			}

			cmd, err := types.ToCommand(cm)
			if err != nil {
				notify(notices, types.NoticeFor(err))
				continue
			}

			if err := lb.Do(r.Context(), cmd); err != nil {
				if errors.Is(err, lobby.ErrClosed) || errors.Is(err, context.Canceled) {
					return
				}
				notify(notices, types.NoticeFor(err))
			}
		}
	}
}

func notify(ch chan<- types.ServerMessage, msg types.ServerMessage) {
	select {
	case ch <- msg:
	default:
	}
}
