package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/catalog"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/db"
)

func seedCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-catalog",
		Short: "Create the players table and fill it with the built-in roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			database, err := db.Open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer database.Close()

			store := catalog.NewStore(database.Gorm, log)
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			n, err := store.Seed(ctx, catalog.Static())
			if err != nil {
				return err
			}
			log.Info("catalog seeded", zap.Int("players", n))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d players\n", n)
			return nil
		},
	}
}
