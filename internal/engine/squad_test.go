package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquadAdd_Quota(t *testing.T) {
	pool := testPool()
	keeper, secondKeeper := pool[13], pool[14]

	cases := []struct {
		name    string
		squad   Squad
		add     Player
		enforce bool
		wantErr error
		wantLen int
	}{
		{name: "first keeper", squad: Squad{}, add: keeper, enforce: true, wantLen: 1},
		{name: "second keeper rejected", squad: Squad{keeper}, add: secondKeeper, enforce: true, wantErr: ErrRoleQuotaExceeded, wantLen: 1},
		{name: "second keeper advisory", squad: Squad{keeper}, add: secondKeeper, enforce: false, wantLen: 2},
		{name: "fourth all-rounder rejected", squad: Squad{pool[10], pool[11], pool[12]}, add: Player{ID: 40, Role: RoleAllRounder}, enforce: true, wantErr: ErrRoleQuotaExceeded, wantLen: 3},
		{name: "sixth batsman rejected", squad: Squad(pool[0:5]), add: Player{ID: 41, Role: RoleBatsman}, enforce: true, wantErr: ErrRoleQuotaExceeded, wantLen: 5},
		{name: "sixth bowler rejected", squad: Squad(pool[5:10]), add: Player{ID: 42, Role: RoleBowler}, enforce: true, wantErr: ErrRoleQuotaExceeded, wantLen: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := tc.squad.Add(tc.add, tc.enforce)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, got, tc.wantLen)
		})
	}
}

func TestSquadAdd_FullCheckedBeforeDuplicate(t *testing.T) {
	pool := testPool()
	squad := Squad(pool[:11])

	_, added, err := squad.Add(pool[0], false)
	assert.ErrorIs(t, err, ErrSquadFull)
	assert.False(t, added)
}

func TestSquadQueries(t *testing.T) {
	pool := testPool()
	squad := Squad{pool[0], pool[13], pool[5]}

	assert.True(t, squad.IsSelected(14))
	assert.False(t, squad.IsSelected(15))
	assert.Equal(t, 1, squad.RoleCount(RoleBatsman))
	assert.True(t, squad.QuotaExceeded(RoleWicketKeeper))
	assert.False(t, squad.QuotaExceeded(RoleBowler))
	assert.False(t, squad.QuotaExceeded(Role("Umpire")))
}

// Random add/remove walks never break the size or quota invariants.
func TestSquad_RandomWalkKeepsInvariants(t *testing.T) {
	pool := testPool()
	rng := rand.New(rand.NewSource(7))

	for walk := 0; walk < 50; walk++ {
		s := NewState(pool, DefaultRules())
		for step := 0; step < 200; step++ {
			cmd := Command{Type: CmdAddPlayer, PlayerID: rng.Intn(len(pool)+2) + 1}
			if rng.Intn(3) == 0 {
				cmd.Type = CmdRemovePlayer
			}
			_, next, _ := Apply(s, cmd)
			s = next

			require.LessOrEqual(t, len(s.Squad), MaxSquadSize)
			for role, limit := range RoleQuota {
				require.LessOrEqual(t, s.Squad.RoleCount(role), limit, "role %s", role)
			}
			seen := map[int]bool{}
			for _, p := range s.Squad {
				require.False(t, seen[p.ID], "duplicate id %d", p.ID)
				seen[p.ID] = true
			}
		}
	}
}

func TestCandidates_Affordances(t *testing.T) {
	s := NewState(testPool(), Rules{EnforceQuota: false})
	_, s, _ = Apply(s, Command{Type: CmdAddPlayer, PlayerID: 14})

	byID := map[int]Candidate{}
	for _, c := range Candidates(s) {
		byID[c.Player.ID] = c
	}

	assert.True(t, byID[14].Selected)
	assert.True(t, byID[14].CanRemove)
	assert.False(t, byID[14].CanAdd)
	assert.False(t, byID[15].CanAdd, "keeper quota gates the affordance even when advisory")
	assert.True(t, byID[1].CanAdd)

	s.Phase = PhaseTeamLocked
	for _, c := range Candidates(s) {
		assert.False(t, c.CanAdd)
		assert.False(t, c.CanRemove)
	}
}

func TestSuggestSquad(t *testing.T) {
	squad := SuggestSquad(testPool())
	require.Len(t, squad, MaxSquadSize)
	for role, limit := range RoleQuota {
		assert.LessOrEqual(t, squad.RoleCount(role), limit)
	}

	short := SuggestSquad(testPool()[:4])
	assert.Len(t, short, 4)
}
