package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/catalog"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/hub"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/lobby"
	"github.com/DoyleJ11/fantasy-cricket-backend/pkg/types"
)

func newServer(t *testing.T) (*httptest.Server, *lobby.Lobby) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx)
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.CreateLobby{
		Code:  "ABC123",
		State: engine.NewState(catalog.Static(), engine.DefaultRules()),
		Reply: reply,
	}
	lb := <-reply

	mux := http.NewServeMux()
	mux.Handle("/ws", Handler(h, Options{}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, lb
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=" + code
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var msg types.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func writeMsg(t *testing.T, conn *websocket.Conn, m types.ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, m))
}

func TestHandler_CommandsAndNotices(t *testing.T) {
	srv, _ := newServer(t)
	conn := dial(t, srv, "ABC123")

	first := readMsg(t, conn)
	require.Equal(t, types.TypeStateSnapshot, first.Type)
	require.NotNil(t, first.State)
	assert.Equal(t, engine.PhaseBuilding, first.State.Phase)
	assert.Len(t, first.Candidates, len(catalog.Static()))

	writeMsg(t, conn, types.ClientMessage{Type: "AddPlayer", PlayerID: 1})
	next := readMsg(t, conn)
	require.Equal(t, types.TypeStateSnapshot, next.Type)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, []int{1}, next.State.Squad.IDs())

	writeMsg(t, conn, types.ClientMessage{Type: "MarkDone"})
	notice := readMsg(t, conn)
	require.Equal(t, types.TypeNotice, notice.Type)
	require.NotNil(t, notice.Notice)
	assert.Equal(t, "squad_incomplete", notice.Notice.Code)

	writeMsg(t, conn, types.ClientMessage{Type: "LockPick"})
	notice = readMsg(t, conn)
	assert.Equal(t, "unsupported_command", notice.Notice.Code)
}

func TestHandler_BadJSON(t *testing.T) {
	srv, _ := newServer(t)
	conn := dial(t, srv, "ABC123")
	_ = readMsg(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{nope")))

	notice := readMsg(t, conn)
	require.NotNil(t, notice.Notice)
	assert.Equal(t, "bad_json", notice.Notice.Code)
}

func TestHandler_UnknownSession(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/ws?code=NOPE00")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_SessionCloseEndsConnection(t *testing.T) {
	srv, lb := newServer(t)
	conn := dial(t, srv, "ABC123")
	_ = readMsg(t, conn)

	lb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}
