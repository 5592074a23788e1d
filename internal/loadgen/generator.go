package loadgen

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/stats"
)

// Reaction time range in seconds.
const (
	minTime = 0.15
	maxTime = 1.5
)

// generate builds the valid submissions for a run, the invalid ones, and the
// aggregates the service should hold afterwards.
func generate(cfg Config) (valid, invalid []Submission, expected map[string]*Expected) {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1))

	names := make([]string, cfg.Players)
	for i := range names {
		names[i] = "player-" + uuid.NewString()[:8]
	}

	expected = make(map[string]*Expected, cfg.Players)
	valid = make([]Submission, 0, cfg.Submissions)
	for range cfg.Submissions {
		name := names[rng.IntN(len(names))]
		level := model.Levels[rng.IntN(len(model.Levels))]
		raw := math.Round((minTime+rng.Float64()*(maxTime-minTime))*1000) / 1000

		sub := Submission{Name: mangle(rng, name), Time: raw, Level: string(level)}
		sub.key = stats.NormalizeName(sub.Name)
		valid = append(valid, sub)

		exp, ok := expected[sub.key]
		if !ok {
			exp = &Expected{Name: sub.key, Levels: make(map[model.Level]model.LevelStats, len(model.Levels))}
			expected[sub.key] = exp
		}
		mult, _ := stats.Multiplier(level)
		exp.Overall.Avg, exp.Overall.Games = stats.RunningMean(exp.Overall.Avg, exp.Overall.Games, raw*mult)
		ls := exp.Levels[level]
		ls.Avg, ls.Games = stats.RunningMean(ls.Avg, ls.Games, raw)
		exp.Levels[level] = ls
	}

	invalid = make([]Submission, 0, cfg.Invalid)
	for range cfg.Invalid {
		name := names[rng.IntN(len(names))]
		sub := Submission{Name: name, Time: 1, Level: "extreme"}
		sub.key = stats.NormalizeName(name)
		invalid = append(invalid, sub)
	}
	return valid, invalid, expected
}

// mangle varies case and padding so the service's name normalization is
// exercised on every request.
func mangle(rng *rand.Rand, name string) string {
	switch rng.IntN(4) {
	case 0:
		return strings.ToUpper(name)
	case 1:
		return "  " + name + " "
	case 2:
		return strings.ToUpper(name[:1]) + name[1:]
	default:
		return name
	}
}
