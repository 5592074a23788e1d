package loadgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/scoreboard/pkg/logger"
)

// ErrVerification is returned when the leaderboard disagrees with what was
// submitted.
var ErrVerification = errors.New("leaderboard verification failed")

// Run executes a complete load run: health check, concurrent submissions,
// leaderboard fetch and verification.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	log := cfg.Logger
	st := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting scoreboard load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("invalid", cfg.Invalid),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return st, fmt.Errorf("service health check failed: %w", err)
	}

	valid, invalid, expected := generate(cfg)
	st.Players = len(expected)

	cnt := submitAll(ctx, cfg, c, append(valid, invalid...))
	st.Submitted = int(cnt.submitted.Load())
	st.Accepted = int(cnt.accepted.Load())
	st.Rejected = int(cnt.rejected.Load())
	st.Failed = int(cnt.failed.Load())
	if err := ctx.Err(); err != nil {
		return st, fmt.Errorf("submission interrupted: %w", err)
	}

	rows, err := c.leaderboard(ctx)
	if err != nil {
		return st, err
	}
	st.Entries = len(rows)

	st.Mismatches = verify(rows, expected)
	if st.Rejected != len(invalid) {
		st.Mismatches = append(st.Mismatches,
			fmt.Sprintf("%d submissions rejected, want %d", st.Rejected, len(invalid)))
	}
	if st.Failed > 0 {
		st.Mismatches = append(st.Mismatches, fmt.Sprintf("%d submissions failed", st.Failed))
	}
	st.Duration = time.Since(st.StartTime)

	perSecond := 0.0
	if st.Duration > 0 {
		perSecond = float64(st.Submitted) / st.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("submitted", st.Submitted),
		logger.Int("accepted", st.Accepted),
		logger.Int("rejected", st.Rejected),
		logger.Int("failed", st.Failed),
		logger.Int("players", st.Players),
		logger.Int("leaderboardEntries", st.Entries),
		logger.Duration("duration", st.Duration),
		logger.Float64("submissionsPerSecond", perSecond))

	if len(st.Mismatches) > 0 {
		for _, m := range st.Mismatches {
			log.Error(ctx, "verification mismatch", logger.String("detail", m))
		}
		return st, fmt.Errorf("%w: %d mismatches", ErrVerification, len(st.Mismatches))
	}
	log.Info(ctx, "leaderboard verified")
	return st, nil
}
