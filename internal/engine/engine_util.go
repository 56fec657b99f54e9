package engine

import "slices"

func NewState(pool []Player, rules Rules) State {
	return State{
		Phase: PhaseBuilding,
		Pool:  slices.Clone(pool),
		Squad: Squad{},
		Match: NewMatch(),
		Rules: rules,
	}
}

func DefaultRules() Rules {
	return Rules{EnforceQuota: true}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

type Candidate struct {
	Player    Player `json:"player"`
	Selected  bool   `json:"selected"`
	CanAdd    bool   `json:"can_add"`
	CanRemove bool   `json:"can_remove"`
}

// Candidates lists the pool with the add/remove affordances the client
// should enable. Quota always gates CanAdd, even when Apply would not.
func Candidates(s State) []Candidate {
	building := s.Phase == PhaseBuilding
	out := make([]Candidate, 0, len(s.Pool))
	for _, p := range s.Pool {
		selected := s.Squad.IsSelected(p.ID)
		out = append(out, Candidate{
			Player:    p,
			Selected:  selected,
			CanAdd:    building && !selected && !s.Squad.Full() && !s.Squad.QuotaExceeded(p.Role),
			CanRemove: building && selected,
		})
	}
	return out
}
