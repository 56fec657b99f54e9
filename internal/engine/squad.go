package engine

import (
	"fmt"
	"slices"
)

type Role string

const (
	RoleBatsman      Role = "Batsman"
	RoleBowler       Role = "Bowler"
	RoleAllRounder   Role = "All-rounder"
	RoleWicketKeeper Role = "Wicket-keeper"
)

const MaxSquadSize = 11

// RoleQuota is the most players of each role a squad may hold.
var RoleQuota = map[Role]int{
	RoleBatsman:      5,
	RoleBowler:       5,
	RoleAllRounder:   3,
	RoleWicketKeeper: 1,
}

func (r Role) Valid() bool {
	_, ok := RoleQuota[r]
	return ok
}

type Player struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Rank         int    `json:"rank"`
	JerseyNumber int    `json:"jersey_number"`
	BattingStyle string `json:"batting_style"`
	BowlingStyle string `json:"bowling_style"`
	Role         Role   `json:"role"`
}

// Squad is kept in insertion order. Methods never modify the receiver's
// backing array, so a Squad held by a broadcast snapshot stays stable.
type Squad []Player

func (s Squad) IsSelected(id int) bool {
	return slices.ContainsFunc(s, func(p Player) bool { return p.ID == id })
}

func (s Squad) RoleCount(role Role) int {
	n := 0
	for _, p := range s {
		if p.Role == role {
			n++
		}
	}
	return n
}

func (s Squad) QuotaExceeded(role Role) bool {
	limit, ok := RoleQuota[role]
	if !ok {
		return false
	}
	return s.RoleCount(role) >= limit
}

func (s Squad) Full() bool { return len(s) >= MaxSquadSize }

// Add appends p. Size is checked before anything else, so a full squad
// rejects even a player it already holds. Duplicates are a no-op.
func (s Squad) Add(p Player, enforceQuota bool) (Squad, bool, error) {
	if s.Full() {
		return s, false, fmt.Errorf("%w: %d of %d players", ErrSquadFull, len(s), MaxSquadSize)
	}
	if s.IsSelected(p.ID) {
		return s, false, nil
	}
	if enforceQuota && s.QuotaExceeded(p.Role) {
		return s, false, fmt.Errorf("%w: %s limit is %d", ErrRoleQuotaExceeded, p.Role, RoleQuota[p.Role])
	}

	next := make(Squad, len(s), len(s)+1)
	copy(next, s)
	return append(next, p), true, nil
}

func (s Squad) Remove(id int) (Squad, bool) {
	if !s.IsSelected(id) {
		return s, false
	}
	return slices.DeleteFunc(slices.Clone(s), func(p Player) bool { return p.ID == id }), true
}

func (s Squad) IDs() []int {
	ids := make([]int, len(s))
	for i, p := range s {
		ids[i] = p.ID
	}
	return ids
}

// SuggestSquad fills a squad from pool in rank order, skipping anyone whose
// role quota is already met. The result may be short if the pool is.
func SuggestSquad(pool []Player) Squad {
	ordered := slices.Clone(pool)
	slices.SortStableFunc(ordered, func(a, b Player) int { return a.Rank - b.Rank })

	var squad Squad
	for _, p := range ordered {
		if squad.Full() {
			break
		}
		next, _, err := squad.Add(p, true)
		if err != nil {
			continue
		}
		squad = next
	}
	return squad
}
