package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

// dryRunStore builds SQL without ever reaching a database.
func dryRunStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=cricket dbname=cricket sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewStore(gdb, nil)
}

func TestToPlayers(t *testing.T) {
	cases := []struct {
		name    string
		records []PlayerRecord
		ids     []int
		skipped int
	}{
		{name: "empty", records: nil, ids: []int{}, skipped: 0},
		{
			name: "all valid keeps order",
			records: []PlayerRecord{
				{ID: 2, Name: "B", Rank: 1, Role: string(engine.RoleBowler)},
				{ID: 1, Name: "A", Rank: 2, Role: string(engine.RoleWicketKeeper)},
			},
			ids: []int{2, 1},
		},
		{
			name: "unknown roles dropped",
			records: []PlayerRecord{
				{ID: 1, Name: "A", Role: string(engine.RoleBatsman)},
				{ID: 2, Name: "B", Role: "Umpire"},
				{ID: 3, Name: "C", Role: ""},
				{ID: 4, Name: "D", Role: string(engine.RoleAllRounder)},
			},
			ids:     []int{1, 4},
			skipped: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			players, skipped := toPlayers(tc.records)
			assert.Equal(t, tc.skipped, skipped)
			ids := make([]int, 0, len(players))
			for _, p := range players {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestStore_ListOrdersByRankThenID(t *testing.T) {
	s := dryRunStore(t)

	var records []PlayerRecord
	tx := s.list(context.Background(), &records)
	require.NoError(t, tx.Error)
	assert.Equal(t, `SELECT * FROM "players" ORDER BY rank ASC, id ASC`, tx.Statement.SQL.String())

	players, err := s.Players(context.Background())
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestStore_UpsertsByID(t *testing.T) {
	s := dryRunStore(t)

	records := make([]PlayerRecord, 0, 15)
	for _, p := range Static() {
		records = append(records, fromPlayer(p))
	}
	tx := s.upsert(context.Background(), records)
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	assert.Contains(t, sql, `INSERT INTO "players"`)
	assert.Contains(t, sql, `ON CONFLICT ("id") DO UPDATE SET`)
	assert.Contains(t, sql, `"role"="excluded"."role"`)
	assert.Contains(t, sql, `"rank"="excluded"."rank"`)
	assert.NotContains(t, sql, `"id"="excluded"."id"`)

	n, err := s.Seed(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
