package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

// PlayerRecord is the catalog row. Squads and bets are never stored.
type PlayerRecord struct {
	ID           int    `gorm:"primaryKey;autoIncrement:false"`
	Name         string `gorm:"not null"`
	Rank         int    `gorm:"not null;index"`
	JerseyNumber int    `gorm:"not null"`
	BattingStyle string
	BowlingStyle string
	Role         string `gorm:"not null"`
	UpdatedAt    time.Time
}

func (PlayerRecord) TableName() string {
	return "players"
}

func (r PlayerRecord) toPlayer() engine.Player {
	return engine.Player{
		ID:           r.ID,
		Name:         r.Name,
		Rank:         r.Rank,
		JerseyNumber: r.JerseyNumber,
		BattingStyle: r.BattingStyle,
		BowlingStyle: r.BowlingStyle,
		Role:         engine.Role(r.Role),
	}
}

func fromPlayer(p engine.Player) PlayerRecord {
	return PlayerRecord{
		ID:           p.ID,
		Name:         p.Name,
		Rank:         p.Rank,
		JerseyNumber: p.JerseyNumber,
		BattingStyle: p.BattingStyle,
		BowlingStyle: p.BowlingStyle,
		Role:         string(p.Role),
	}
}

// Store reads the candidate pool from the players table.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ Source = (*Store)(nil)

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, log: logger}
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&PlayerRecord{}); err != nil {
		return fmt.Errorf("migrate players: %w", err)
	}
	return nil
}

// Seed upserts players by id.
func (s *Store) Seed(ctx context.Context, players []engine.Player) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}
	records := make([]PlayerRecord, len(players))
	for i, p := range players {
		records[i] = fromPlayer(p)
	}

	res := s.upsert(ctx, records)
	if res.Error != nil {
		return 0, fmt.Errorf("seed players: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *Store) upsert(ctx context.Context, records []PlayerRecord) *gorm.DB {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&records)
}

// Players lists the pool by rank, then id.
func (s *Store) Players(ctx context.Context) ([]engine.Player, error) {
	var records []PlayerRecord
	if err := s.list(ctx, &records).Error; err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	players, skipped := toPlayers(records)
	if skipped > 0 {
		s.log.Warn("skipped players with unknown role",
			zap.Int("skipped", skipped),
			zap.Int("loaded", len(players)))
	}
	return players, nil
}

func (s *Store) list(ctx context.Context, records *[]PlayerRecord) *gorm.DB {
	return s.db.WithContext(ctx).Order("rank ASC, id ASC").Find(records)
}

// toPlayers drops rows whose role the engine does not know and reports
// how many it dropped.
func toPlayers(records []PlayerRecord) ([]engine.Player, int) {
	players := make([]engine.Player, 0, len(records))
	for _, r := range records {
		p := r.toPlayer()
		if !p.Role.Valid() {
			continue
		}
		players = append(players, p)
	}
	return players, len(records) - len(players)
}
