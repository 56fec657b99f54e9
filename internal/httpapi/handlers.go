package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/catalog"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/hub"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/lobby"
	"github.com/DoyleJ11/fantasy-cricket-backend/pkg/types"
)

// HealthChecker reports whether the catalog database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the collaborators shared by every handler.
type Deps struct {
	Hub       *hub.Hub
	Players   []engine.Player
	Rules     engine.Rules
	AssetsDir string
	DB        HealthChecker // nil when serving the static roster
	Logger    *zap.Logger
}

type Handler struct {
	Deps
	log     *zap.Logger
	newCode func() (string, error)
}

const maxCodeAttempts = 20

func NewHandler(d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Deps: d, log: log, newCode: GenerateCode}
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	// CreateLobby refuses taken codes, so the check and the insert happen
	// in one hub step.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := h.newCode()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to generate code")
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Hub.Inbox() <- hub.CreateLobby{Code: code, State: engine.NewState(h.Players, h.Rules), Reply: reply}
		if <-reply == nil {
			h.log.Debug("collision on session code, regenerating", zap.String("code", code))
			continue
		}

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
		return
	}

	h.log.Error("no free session code", zap.Int("attempts", maxCodeAttempts))
	writeError(w, http.StatusServiceUnavailable, "no_free_code", "could not allocate a session code")
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	lb, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSnapshot(w, r, lb)
}

func (h *Handler) PostCommand(w http.ResponseWriter, r *http.Request) {
	lb, ok := h.session(w, r)
	if !ok {
		return
	}

	var cm types.ClientMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&cm); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	cmd, err := types.ToCommand(cm)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if err := lb.Do(r.Context(), cmd); err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeSnapshot(w, r, lb)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	reply := make(chan bool, 1)
	h.Hub.Inbox() <- hub.RemoveLobby{Code: code, Reply: reply}
	if !<-reply {
		writeError(w, http.StatusNotFound, "session_not_found", "no session with code "+code)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Search(h.Players, r.URL.Query().Get("q")))
}

func (h *Handler) PlayerImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_player_id", "player id must be an integer")
		return
	}
	p, ok := catalog.FindByID(h.Players, id)
	if !ok {
		writeError(w, http.StatusNotFound, engine.ErrorCode(engine.ErrUnknownPlayer), fmt.Sprintf("no player with id %d", id))
		return
	}
	h.serveAsset(w, r, catalog.ImageName(p), fmt.Sprintf("#%d", p.JerseyNumber))
}

func (h *Handler) Banner(w http.ResponseWriter, r *http.Request) {
	h.serveAsset(w, r, catalog.BannerName, "Fantasy Cricket")
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) HealthzDB(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.HealthCheck(ctx); err != nil {
		h.log.Warn("database health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"database": "connected",
	})
}

func (h *Handler) lookup(code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Hub.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*lobby.Lobby, bool) {
	code := chi.URLParam(r, "code")
	lb := h.lookup(code)
	if lb == nil {
		writeError(w, http.StatusNotFound, "session_not_found", "no session with code "+code)
		return nil, false
	}
	return lb, true
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, r *http.Request, lb *lobby.Lobby) {
	view, err := lb.View(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Snapshot(view.Version, view.State))
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, lobby.ErrClosed) {
		writeError(w, http.StatusGone, "session_closed", err.Error())
		return
	}
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("command failed", zap.Error(err))
	}
	writeError(w, status, engine.ErrorCode(err), err.Error())
}

// StatusFor maps an engine rejection onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrSquadFull),
		errors.Is(err, engine.ErrRoleQuotaExceeded),
		errors.Is(err, engine.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, engine.ErrSquadIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidBet),
		errors.Is(err, engine.ErrUnsupportedCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// serveAsset serves name from the assets dir, or a generated placeholder
// labelled with label when the file is missing.
func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request, name, label string) {
	path := filepath.Join(h.AssetsDir, name)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}

	h.log.Debug("asset missing, serving placeholder", zap.String("asset", name))
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Asset-Fallback", "placeholder")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, placeholderSVG, html.EscapeString(label))
}

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200">` +
	`<rect width="200" height="200" fill="#1f3c88"/>` +
	`<text x="100" y="110" font-family="sans-serif" font-size="28" fill="#ffffff" text-anchor="middle">%s</text>` +
	`</svg>`
