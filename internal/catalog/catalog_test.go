package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

func TestStatic_RosterCanFillAValidSquad(t *testing.T) {
	players := Static()
	require.Len(t, players, 15)

	ids := map[int]bool{}
	for _, p := range players {
		require.False(t, ids[p.ID], "duplicate id %d", p.ID)
		ids[p.ID] = true
		require.True(t, p.Role.Valid(), "player %s has role %q", p.Name, p.Role)
	}

	squad := engine.SuggestSquad(players)
	assert.Len(t, squad, engine.MaxSquadSize)
}

func TestStatic_ReturnsCopy(t *testing.T) {
	a := Static()
	a[0].Name = "changed"
	assert.Equal(t, "Virat Kohli", Static()[0].Name)
}

func TestStaticSource(t *testing.T) {
	players, err := StaticSource{}.Players(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Static(), players)
}

func TestImageName(t *testing.T) {
	p, ok := FindByID(Static(), 3)
	require.True(t, ok)
	assert.Equal(t, "93.png", ImageName(p))

	_, ok = FindByID(Static(), 404)
	assert.False(t, ok)
}

func TestPlayerRecordRoundTrip(t *testing.T) {
	for _, p := range Static() {
		assert.Equal(t, p, fromPlayer(p).toPlayer())
	}
}

func TestSearch(t *testing.T) {
	players := Static()

	cases := []struct {
		name  string
		query string
		first string
		count int
	}{
		{name: "empty returns all", query: "  ", first: "Virat Kohli", count: len(players)},
		{name: "case folded", query: "BUMRAH", first: "Jasprit Bumrah", count: 1},
		{name: "subsequence", query: "rsharma", first: "Rohit Sharma", count: 1},
		{name: "no match", query: "zzz", count: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Search(players, tc.query)
			require.Len(t, got, tc.count)
			if tc.count > 0 {
				assert.Equal(t, tc.first, got[0].Name)
			}
		})
	}
}

func TestSearch_TiesBrokenByRank(t *testing.T) {
	players := []engine.Player{
		{ID: 1, Name: "Patel B", Rank: 9},
		{ID: 2, Name: "Patel A", Rank: 2},
	}
	got := Search(players, "patel")
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
}
