// Package loadgen drives a running scoreboard over HTTP with random game
// results and checks that the leaderboard reflects them exactly.
package loadgen

import (
	"runtime"
	"time"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/pkg/logger"
)

// Default configuration constants.
const (
	DefaultPlayers     = 50
	DefaultSubmissions = 2000
	DefaultTimeout     = 10 * time.Second
	workerMultiplier   = 2
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Players     int           // Distinct players to create
	Submissions int           // Valid results to submit
	Invalid     int           // Extra results with an unknown level, expected to be rejected
	Workers     int           // Concurrent submitters
	Timeout     time.Duration // Per-request timeout
	Seed        uint64        // Random seed; zero picks one from the clock
	Logger      logger.Logger
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Players < 1 {
		out.Players = DefaultPlayers
	}
	if out.Submissions < 0 {
		out.Submissions = 0
	}
	if out.Workers < 1 {
		out.Workers = runtime.NumCPU() * workerMultiplier
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Seed == 0 {
		out.Seed = uint64(time.Now().UnixNano())
	}
	if out.Logger == nil {
		out.Logger = logger.Nop()
	}
	return out
}

// Submission is one request body sent to POST /api/submit.
type Submission struct {
	Name  string  `json:"name"`
	Time  float64 `json:"time"`
	Level string  `json:"level"`

	// key is the canonical name the service is expected to store.
	key string
}

// Expected is the aggregate a player should end up with.
type Expected struct {
	Name    string
	Overall model.LevelStats
	Levels  map[model.Level]model.LevelStats
}

// Stats holds run statistics.
type Stats struct {
	Submitted  int
	Accepted   int
	Rejected   int
	Failed     int
	Players    int
	Entries    int
	Mismatches []string
	StartTime  time.Time
	Duration   time.Duration
}
