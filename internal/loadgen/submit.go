package loadgen

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/okian/scoreboard/pkg/logger"
)

// counters are shared by all submit workers.
type counters struct {
	submitted atomic.Int64
	accepted  atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
}

// submitAll sends subs with cfg.Workers concurrent workers. Each player is
// pinned to one worker so its results arrive in generation order; the
// service does not serialize concurrent updates to one player.
func submitAll(ctx context.Context, cfg Config, c *client, subs []Submission) *counters {
	var cnt counters
	shards := make([]chan Submission, cfg.Workers)
	for i := range shards {
		shards[i] = make(chan Submission, cfg.Workers*workerMultiplier)
	}

	var wg sync.WaitGroup
	for i, ch := range shards {
		wg.Add(1)
		go func(workerID int, jobs <-chan Submission) {
			defer wg.Done()
			for sub := range jobs {
				if ctx.Err() != nil {
					continue
				}
				cnt.submitted.Add(1)
				res, err := c.submit(ctx, sub)
				switch res {
				case outcomeAccepted:
					cnt.accepted.Add(1)
				case outcomeRejected:
					cnt.rejected.Add(1)
				default:
					cnt.failed.Add(1)
					cfg.Logger.Warn(ctx, "submission failed",
						logger.Int("worker", workerID),
						logger.String("name", sub.key),
						logger.Error(err))
				}
			}
		}(i, ch)
	}

send:
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			break send
		case shards[shardOf(sub.key, len(shards))] <- sub:
		}
	}
	for _, ch := range shards {
		close(ch)
	}
	wg.Wait()
	return &cnt
}

func shardOf(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
