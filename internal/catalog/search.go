package catalog

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
)

// Search returns the players whose name fuzzily contains query, closest
// match first and rank breaking ties. An empty query returns everyone.
func Search(players []engine.Player, query string) []engine.Player {
	query = strings.TrimSpace(query)
	if query == "" {
		return slices.Clone(players)
	}

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return players[a.OriginalIndex].Rank - players[b.OriginalIndex].Rank
	})

	out := make([]engine.Player, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, players[r.OriginalIndex])
	}
	return out
}
