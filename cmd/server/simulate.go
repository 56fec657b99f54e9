package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/catalog"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/lobby"
)

type simOptions struct {
	Bet  string
	Tick time.Duration
	Seed int64 // 0 picks a time-based seed
}

func simulateCmd() *cobra.Command {
	var opts simOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play one session headless: suggested squad, bet, full match",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runSimulation(cmd.Context(), cmd.OutOrStdout(), opts, zap.NewNop())
			return err
		},
	}
	cmd.Flags().StringVar(&opts.Bet, "bet", string(engine.SideIndia), "Side to bet on (India or Opponent)")
	cmd.Flags().DurationVar(&opts.Tick, "tick", 200*time.Millisecond, "Time between overs")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed for the match")
	return cmd
}

// runSimulation drives a real lobby through a whole session and prints
// the scorecard over by over.
func runSimulation(ctx context.Context, w io.Writer, opts simOptions, log *zap.Logger) (engine.Match, error) {
	side, ok := engine.ParseSide(opts.Bet)
	if !ok {
		return engine.Match{}, fmt.Errorf("%w: %q", engine.ErrInvalidBet, opts.Bet)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	players := catalog.Static()
	l := lobby.NewLobby(ctx, engine.NewState(players, engine.DefaultRules()),
		lobby.WithTickInterval(opts.Tick),
		lobby.WithRandom(rand.New(rand.NewSource(seed))),
		lobby.WithLogger(log),
	)
	defer l.Close()

	squad := engine.SuggestSquad(players)
	for _, p := range squad {
		if err := l.Do(ctx, engine.Command{Type: engine.CmdAddPlayer, PlayerID: p.ID}); err != nil {
			return engine.Match{}, fmt.Errorf("add %s: %w", p.Name, err)
		}
		fmt.Fprintf(w, "picked  %-20s %s\n", p.Name, p.Role)
	}
	for _, c := range []engine.CommandType{engine.CmdMarkDone, engine.CmdStartMatch} {
		if err := l.Do(ctx, engine.Command{Type: c}); err != nil {
			return engine.Match{}, fmt.Errorf("%s: %w", c, err)
		}
	}

	// 20 overs plus the join and bet snapshots fit without dropping us.
	out := make(chan lobby.Snapshot, engine.MatchOvers+4)
	if !l.Send(lobby.Join{ClientID: "simulate", Outbox: out}) {
		return engine.Match{}, lobby.ErrClosed
	}
	if err := l.Do(ctx, engine.Command{Type: engine.CmdPlaceBet, Side: side}); err != nil {
		return engine.Match{}, err
	}
	fmt.Fprintf(w, "bet on  %s (seed %d)\n", side, seed)

	printed := 0
	for {
		select {
		case <-ctx.Done():
			return engine.Match{}, ctx.Err()
		case snap, ok := <-out:
			if !ok {
				return engine.Match{}, errors.New("session closed before the match finished")
			}
			m := snap.State.Match
			if m.Overs > printed {
				printed = m.Overs
				fmt.Fprintf(w, "over %2d  India %3d/%-2d  Opponent %3d/%-2d\n",
					m.Overs, m.ScoreTeam, m.WicketsTeam, m.ScoreOpponent, m.WicketsOpponent)
			}
			if m.Status == engine.MatchFinished {
				result := "lost"
				if m.Winner == side {
					result = "won"
				}
				fmt.Fprintf(w, "winner  %s, your bet %s\n", m.Winner, result)
				return m, nil
			}
		}
	}
}
