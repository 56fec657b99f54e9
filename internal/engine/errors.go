package engine

import "errors"

var ErrSquadFull = errors.New("squad is full")
var ErrSquadIncomplete = errors.New("squad must have exactly 11 players")
var ErrRoleQuotaExceeded = errors.New("role quota reached")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrWrongPhase = errors.New("action not available in this phase")
var ErrInvalidBet = errors.New("bet must be India or Opponent")
var ErrMatchNotRunning = errors.New("match is not running")
var ErrUnsupportedCommand = errors.New("unsupported command")

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrSquadFull, "squad_full"},
	{ErrSquadIncomplete, "squad_incomplete"},
	{ErrRoleQuotaExceeded, "role_quota_exceeded"},
	{ErrUnknownPlayer, "unknown_player"},
	{ErrWrongPhase, "wrong_phase"},
	{ErrInvalidBet, "invalid_bet"},
	{ErrMatchNotRunning, "match_not_running"},
	{ErrUnsupportedCommand, "unsupported_command"},
}

// ErrorCode gives clients a stable name for a domain error, or "internal".
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
