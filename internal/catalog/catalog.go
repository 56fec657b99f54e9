// Package catalog supplies the candidate players a squad is picked from.
package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

const BannerName = "win.jpg"

// Source is anything that can list the candidate pool.
type Source interface {
	Players(ctx context.Context) ([]engine.Player, error)
}

var roster = []engine.Player{
	{ID: 1, Name: "Virat Kohli", Rank: 1, JerseyNumber: 18, BattingStyle: "Right-handed", BowlingStyle: "Right-arm medium", Role: engine.RoleBatsman},
	{ID: 2, Name: "Rohit Sharma", Rank: 2, JerseyNumber: 45, BattingStyle: "Right-handed", BowlingStyle: "Right-arm off break", Role: engine.RoleBatsman},
	{ID: 3, Name: "Jasprit Bumrah", Rank: 3, JerseyNumber: 93, BattingStyle: "Right-handed", BowlingStyle: "Right-arm fast", Role: engine.RoleBowler},
	{ID: 4, Name: "KL Rahul", Rank: 4, JerseyNumber: 1, BattingStyle: "Right-handed", BowlingStyle: "Right-arm medium", Role: engine.RoleWicketKeeper},
	{ID: 5, Name: "Hardik Pandya", Rank: 5, JerseyNumber: 33, BattingStyle: "Right-handed", BowlingStyle: "Right-arm fast-medium", Role: engine.RoleAllRounder},
	{ID: 6, Name: "Ravindra Jadeja", Rank: 6, JerseyNumber: 8, BattingStyle: "Left-handed", BowlingStyle: "Left-arm orthodox", Role: engine.RoleAllRounder},
	{ID: 7, Name: "Rishabh Pant", Rank: 7, JerseyNumber: 17, BattingStyle: "Left-handed", BowlingStyle: "Right-arm medium", Role: engine.RoleWicketKeeper},
	{ID: 8, Name: "Mohammed Shami", Rank: 8, JerseyNumber: 11, BattingStyle: "Right-handed", BowlingStyle: "Right-arm fast", Role: engine.RoleBowler},
	{ID: 9, Name: "Shikhar Dhawan", Rank: 9, JerseyNumber: 42, BattingStyle: "Left-handed", BowlingStyle: "Right-arm off-break", Role: engine.RoleBatsman},
	{ID: 10, Name: "Yuzvendra Chahal", Rank: 10, JerseyNumber: 3, BattingStyle: "Right-handed", BowlingStyle: "Right-arm leg-break", Role: engine.RoleBowler},
	{ID: 11, Name: "Bhuvneshwar Kumar", Rank: 11, JerseyNumber: 15, BattingStyle: "Right-handed", BowlingStyle: "Right-arm medium-fast", Role: engine.RoleBowler},
	{ID: 12, Name: "Suryakumar Yadav", Rank: 12, JerseyNumber: 63, BattingStyle: "Right-handed", BowlingStyle: "Right-arm medium", Role: engine.RoleBatsman},
	{ID: 13, Name: "Axar Patel", Rank: 13, JerseyNumber: 20, BattingStyle: "Left-handed", BowlingStyle: "Left-arm orthodox", Role: engine.RoleAllRounder},
	{ID: 14, Name: "Ishan Kishan", Rank: 14, JerseyNumber: 32, BattingStyle: "Left-handed", BowlingStyle: "Right-arm medium", Role: engine.RoleWicketKeeper},
	{ID: 15, Name: "Shardul Thakur", Rank: 15, JerseyNumber: 54, BattingStyle: "Right-handed", BowlingStyle: "Right-arm medium-fast", Role: engine.RoleAllRounder},
}

// Static returns a copy of the built-in roster.
func Static() []engine.Player {
	return slices.Clone(roster)
}

type StaticSource struct{}

func (StaticSource) Players(context.Context) ([]engine.Player, error) {
	return Static(), nil
}

// ImageName is the asset file for a player's card, keyed by jersey number.
func ImageName(p engine.Player) string {
	return fmt.Sprintf("%d.png", p.JerseyNumber)
}

func FindByID(players []engine.Player, id int) (engine.Player, bool) {
	i := slices.IndexFunc(players, func(p engine.Player) bool { return p.ID == id })
	if i < 0 {
		return engine.Player{}, false
	}
	return players[i], true
}
