package types

import (
	"fmt"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

// Server -> Client message types.
const (
	TypeStateSnapshot = "StateSnapshot"
	TypeNotice        = "Notice"
)

// ClientMessage is one command from a client. Type is the engine command
// name: AddPlayer, RemovePlayer, MarkDone, StartMatch or PlaceBet.
type ClientMessage struct {
	Type     string `json:"type"`
	PlayerID int    `json:"player_id,omitempty"`
	Side     string `json:"side,omitempty"` // "India" | "Opponent"
}

type ServerMessage struct {
	Type       string             `json:"type"` // "StateSnapshot" | "Notice"
	Version    int                `json:"version,omitempty"`
	State      *engine.State      `json:"state,omitempty"`
	Candidates []engine.Candidate `json:"candidates,omitempty"`
	Notice     *Notice            `json:"notice,omitempty"`
}

// Notice reports a rejected command. Code is stable, Message is for humans.
type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToCommand maps a wire message onto an engine command. Argument checks
// (player ids, bet sides) are left to the engine.
func ToCommand(m ClientMessage) (engine.Command, error) {
	switch t := engine.CommandType(m.Type); t {
	case engine.CmdAddPlayer, engine.CmdRemovePlayer:
		return engine.Command{Type: t, PlayerID: m.PlayerID}, nil
	case engine.CmdMarkDone, engine.CmdStartMatch:
		return engine.Command{Type: t}, nil
	case engine.CmdPlaceBet:
		return engine.Command{Type: t, Side: engine.Side(m.Side)}, nil
	default:
		return engine.Command{}, fmt.Errorf("%w: %q", engine.ErrUnsupportedCommand, m.Type)
	}
}
