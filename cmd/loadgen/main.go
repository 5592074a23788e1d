package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/scoreboard/internal/loadgen"
	"github.com/okian/scoreboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
	defaultRunTime = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:5000", "Base URL of the service")
		players     = flag.Int("players", loadgen.DefaultPlayers, "Number of distinct players")
		submissions = flag.Int("submissions", loadgen.DefaultSubmissions, "Number of valid results to submit")
		invalid     = flag.Int("invalid", 0, "Number of extra results with an unknown level")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout     = flag.Duration("timeout", loadgen.DefaultTimeout, "HTTP request timeout")
		seed        = flag.Uint64("seed", 0, "Random seed (0 picks one from the clock)")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTime)
	defer cancel()

	_, err := loadgen.Run(ctx, &loadgen.Config{
		BaseURL:     *baseURL,
		Players:     *players,
		Submissions: *submissions,
		Invalid:     *invalid,
		Workers:     *workers,
		Timeout:     *timeout,
		Seed:        *seed,
		Logger:      logger.Get().Named("loadgen"),
	})
	if err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		os.Exit(1)
	}
}
