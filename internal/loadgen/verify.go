package loadgen

import (
	"fmt"
	"math"

	"github.com/okian/scoreboard/internal/domain/leaderboard"
	"github.com/okian/scoreboard/internal/domain/model"
)

// tolerance allows for backends that round floats on the way through.
const tolerance = 1e-9

// verify checks the leaderboard ordering over every row and the exact
// aggregates of the players this run created. It returns one message per
// discrepancy.
func verify(rows []model.PlayerRecord, expected map[string]*Expected) []string {
	var out []string

	for i := 1; i < len(rows); i++ {
		if leaderboard.Compare(rows[i-1], rows[i]) > 0 {
			out = append(out, fmt.Sprintf("row %d (%s) with key %v is below %s with key %v",
				i, rows[i].Name, leaderboard.Key(rows[i]), rows[i-1].Name, leaderboard.Key(rows[i-1])))
		}
	}

	byName := make(map[string]model.PlayerRecord, len(rows))
	for _, r := range rows {
		if _, dup := byName[r.Name]; dup {
			out = append(out, fmt.Sprintf("player %s appears more than once", r.Name))
		}
		byName[r.Name] = r
	}

	for name, exp := range expected {
		got, ok := byName[name]
		if !ok {
			out = append(out, fmt.Sprintf("player %s missing from leaderboard", name))
			continue
		}
		if got.OverallGames != exp.Overall.Games {
			out = append(out, fmt.Sprintf("player %s overall_games = %d, want %d", name, got.OverallGames, exp.Overall.Games))
		}
		if !near(got.Overall().Avg, exp.Overall.Avg) {
			out = append(out, fmt.Sprintf("player %s overall_avg = %v, want %v", name, got.Overall().Avg, exp.Overall.Avg))
		}
		sum := 0
		for _, l := range model.Levels {
			want := exp.Levels[l]
			have := got.Stats(l)
			sum += have.Games
			if have.Games != want.Games || !near(have.Avg, want.Avg) {
				out = append(out, fmt.Sprintf("player %s %s = %+v, want %+v", name, l, have, want))
			}
		}
		if sum != got.OverallGames {
			out = append(out, fmt.Sprintf("player %s level games sum to %d, overall_games is %d", name, sum, got.OverallGames))
		}
	}
	return out
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
