package types

import "github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"

// Snapshot renders a session state for clients, with the add/remove
// affordances already worked out.
func Snapshot(version int, st engine.State) ServerMessage {
	return ServerMessage{
		Type:       TypeStateSnapshot,
		Version:    version,
		State:      &st,
		Candidates: engine.Candidates(st),
	}
}

func NoticeFor(err error) ServerMessage {
	return ServerMessage{
		Type:   TypeNotice,
		Notice: &Notice{Code: engine.ErrorCode(err), Message: err.Error()},
	}
}
