package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/catalog"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/hub"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/lobby"
)

func TestSweepSessions_RemovesExpired(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, hub.WithNow(func() time.Time { return created }))
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.CreateLobby{
		Code:  "ABC123",
		State: engine.NewState(catalog.Static(), engine.DefaultRules()),
		Reply: reply,
	}
	lb := <-reply

	s, err := NewScheduler(h, time.Hour, time.Minute, nil)
	require.NoError(t, err)

	s.now = func() time.Time { return created.Add(30 * time.Minute) }
	s.sweepSessions()
	select {
	case <-lb.Done():
		t.Fatalf("session swept before its ttl")
	default:
	}

	s.now = func() time.Time { return created.Add(61 * time.Minute) }
	s.sweepSessions()
	select {
	case <-lb.Done():
	case <-time.After(time.Second):
		t.Fatalf("expired session still running")
	}

	h.Inbox() <- hub.GetLobby{Code: "ABC123", Reply: reply}
	assert.Nil(t, <-reply)
}

func TestScheduler_StartStop(t *testing.T) {
	h := hub.NewHub(context.Background())
	t.Cleanup(func() { h.Inbox() <- hub.ShutdownHub{} })

	s, err := NewScheduler(h, time.Hour, time.Minute, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop())
}
