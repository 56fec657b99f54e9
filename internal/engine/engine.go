package engine

import (
	"fmt"
)

type Phase string

const (
	PhaseBuilding   Phase = "building"
	PhaseTeamLocked Phase = "team_locked"
	PhaseBetting    Phase = "betting"
	PhaseWatching   Phase = "watching"
)

type Rules struct {
	// EnforceQuota rejects adds past a role quota. When false the quota only
	// drives the CanAdd affordance.
	EnforceQuota bool `json:"enforce_quota"`
}

type State struct {
	Phase Phase    `json:"phase"`
	Pool  []Player `json:"pool"`
	Squad Squad    `json:"squad"`
	Bet   Side     `json:"bet,omitempty"`
	Match Match    `json:"match"`
	Rules Rules    `json:"rules"`
}

type CommandType string

const (
	CmdAddPlayer    CommandType = "AddPlayer"
	CmdRemovePlayer CommandType = "RemovePlayer"
	CmdMarkDone     CommandType = "MarkDone"
	CmdStartMatch   CommandType = "StartMatch"
	CmdPlaceBet     CommandType = "PlaceBet"
)

/*
	CmdAddPlayer    -> EvtPlayerAdded (nothing if already selected)
	CmdRemovePlayer -> EvtPlayerRemoved (nothing if not selected)
	CmdMarkDone     -> EvtTeamLocked
	CmdStartMatch   -> EvtBettingOpened
	CmdPlaceBet     -> EvtBetPlaced -> EvtMatchStarted
	clock tick      -> EvtOverBowled -> EvtMatchFinished on the last over
*/

type Command struct {
	Type     CommandType
	PlayerID int
	Side     Side
}

type EventType string

const (
	EvtPlayerAdded   EventType = "PlayerAdded"
	EvtPlayerRemoved EventType = "PlayerRemoved"
	EvtTeamLocked    EventType = "TeamLocked"
	EvtBettingOpened EventType = "BettingOpened"
	EvtBetPlaced     EventType = "BetPlaced"
	EvtMatchStarted  EventType = "MatchStarted"
	EvtOverBowled    EventType = "OverBowled"
	EvtMatchFinished EventType = "MatchFinished"
)

type Event struct {
	Type     EventType
	PlayerID int
	Side     Side
	Over     Over
}

func Apply(s State, cmd Command) ([]Event, State, error) {
	newState := s

	switch cmd.Type {
	case CmdAddPlayer:
		if s.Phase != PhaseBuilding {
			return nil, s, wrongPhase(s, cmd)
		}
		p, ok := lookup(s.Pool, cmd.PlayerID)
		if !ok {
			return nil, s, fmt.Errorf("%w: %d", ErrUnknownPlayer, cmd.PlayerID)
		}

		squad, added, err := s.Squad.Add(p, s.Rules.EnforceQuota)
		if err != nil {
			return nil, s, err
		}
		if !added {
			return nil, s, nil
		}
		newState.Squad = squad
		return []Event{{Type: EvtPlayerAdded, PlayerID: p.ID}}, newState, nil

	case CmdRemovePlayer:
		if s.Phase != PhaseBuilding {
			return nil, s, wrongPhase(s, cmd)
		}
		squad, removed := s.Squad.Remove(cmd.PlayerID)
		if !removed {
			return nil, s, nil
		}
		newState.Squad = squad
		return []Event{{Type: EvtPlayerRemoved, PlayerID: cmd.PlayerID}}, newState, nil

	case CmdMarkDone:
		if s.Phase != PhaseBuilding {
			return nil, s, wrongPhase(s, cmd)
		}
		if len(s.Squad) != MaxSquadSize {
			return nil, s, fmt.Errorf("%w: %d of %d players", ErrSquadIncomplete, len(s.Squad), MaxSquadSize)
		}
		newState.Phase = PhaseTeamLocked
		return []Event{{Type: EvtTeamLocked}}, newState, nil

	case CmdStartMatch:
		if s.Phase != PhaseTeamLocked {
			return nil, s, wrongPhase(s, cmd)
		}
		newState.Phase = PhaseBetting
		return []Event{{Type: EvtBettingOpened}}, newState, nil

	case CmdPlaceBet:
		if s.Phase != PhaseBetting {
			return nil, s, wrongPhase(s, cmd)
		}
		side, ok := ParseSide(string(cmd.Side))
		if !ok {
			return nil, s, fmt.Errorf("%w: %q", ErrInvalidBet, cmd.Side)
		}

		newState.Bet = side
		newState.Phase = PhaseWatching
		newState.Match = s.Match.Start()
		events := []Event{
			{Type: EvtBetPlaced, Side: side},
			{Type: EvtMatchStarted},
		}
		return events, newState, nil

	default:
		return nil, s, fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}
}

// Advance runs one clock tick of the match.
func Advance(s State, src RandomSource) ([]Event, State, error) {
	if s.Phase != PhaseWatching {
		return nil, s, ErrMatchNotRunning
	}

	match, over, err := s.Match.Tick(src)
	if err != nil {
		return nil, s, err
	}

	newState := s
	newState.Match = match
	events := []Event{{Type: EvtOverBowled, Over: over}}
	if match.Status == MatchFinished {
		events = append(events, Event{Type: EvtMatchFinished, Side: match.Winner})
	}
	return events, newState, nil
}

// Reduce rebuilds a session from its event log.
func Reduce(pool []Player, rules Rules, events []Event) State {
	s := NewState(pool, rules)
	for _, event := range events {
		switch event.Type {
		case EvtPlayerAdded:
			if p, ok := lookup(pool, event.PlayerID); ok {
				s.Squad, _, _ = s.Squad.Add(p, false)
			}
		case EvtPlayerRemoved:
			s.Squad, _ = s.Squad.Remove(event.PlayerID)
		case EvtTeamLocked:
			s.Phase = PhaseTeamLocked
		case EvtBettingOpened:
			s.Phase = PhaseBetting
		case EvtBetPlaced:
			s.Bet = event.Side
		case EvtMatchStarted:
			s.Phase = PhaseWatching
			s.Match = s.Match.Start()
		case EvtOverBowled:
			s.Match = s.Match.apply(event.Over)
		}
	}
	return s
}

func lookup(pool []Player, id int) (Player, bool) {
	for _, p := range pool {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

func wrongPhase(s State, cmd Command) error {
	return fmt.Errorf("%w: %s not allowed while %s", ErrWrongPhase, cmd.Type, s.Phase)
}
