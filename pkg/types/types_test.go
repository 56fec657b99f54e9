package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/catalog"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

func TestToCommand(t *testing.T) {
	cases := []struct {
		in   string
		want engine.Command
	}{
		{`{"type":"AddPlayer","player_id":4}`, engine.Command{Type: engine.CmdAddPlayer, PlayerID: 4}},
		{`{"type":"RemovePlayer","player_id":4}`, engine.Command{Type: engine.CmdRemovePlayer, PlayerID: 4}},
		{`{"type":"MarkDone"}`, engine.Command{Type: engine.CmdMarkDone}},
		{`{"type":"StartMatch"}`, engine.Command{Type: engine.CmdStartMatch}},
		{`{"type":"PlaceBet","side":"Opponent"}`, engine.Command{Type: engine.CmdPlaceBet, Side: engine.SideOpponent}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var m ClientMessage
			require.NoError(t, json.Unmarshal([]byte(tc.in), &m))
			got, err := ToCommand(m)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToCommand_Unsupported(t *testing.T) {
	_, err := ToCommand(ClientMessage{Type: "LockPick"})
	require.ErrorIs(t, err, engine.ErrUnsupportedCommand)
	assert.Equal(t, "unsupported_command", engine.ErrorCode(err))
}

func TestSnapshot_CarriesCandidates(t *testing.T) {
	st := engine.NewState(catalog.Static(), engine.DefaultRules())
	msg := Snapshot(3, st)

	assert.Equal(t, TypeStateSnapshot, msg.Type)
	assert.Equal(t, 3, msg.Version)
	require.Len(t, msg.Candidates, len(st.Pool))
	for _, c := range msg.Candidates {
		assert.True(t, c.CanAdd)
		assert.False(t, c.CanRemove)
	}
	assert.Nil(t, msg.Notice)
}

func TestNoticeFor(t *testing.T) {
	msg := NoticeFor(fmt.Errorf("%w: 11 of 11", engine.ErrSquadFull))
	require.NotNil(t, msg.Notice)
	assert.Equal(t, TypeNotice, msg.Type)
	assert.Equal(t, "squad_full", msg.Notice.Code)
	assert.Contains(t, msg.Notice.Message, "11 of 11")
}
