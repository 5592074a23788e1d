// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/okian/scoreboard/internal/adapters/repository"
	"github.com/okian/scoreboard/internal/domain/leaderboard"
	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/internal/domain/stats"
	"github.com/okian/scoreboard/pkg/logger"
	"github.com/okian/scoreboard/pkg/metrics"
)

// Error kinds returned by the service. Validation failures also match the
// more specific stats.Err* values.
var (
	ErrInvalidInput     = stats.ErrInvalidInput
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrConflict         = errors.New("concurrent write conflict")
	ErrNotStarted       = errors.New("service not started")
)

// SubmitInput carries loosely typed request fields as decoded from JSON.
type SubmitInput struct {
	Name  any
	Time  any
	Level any
}

// Service implements submission ingestion and leaderboard reads on top of a
// single shared Store.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	storeOpts repository.Options
	injected  bool

	started   bool
	startedAt time.Time

	accepted atomic.Int64
	rejected atomic.Int64
	players  atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects an already opened store. The caller owns it: Start will
// not open another, and Stop leaves it open so the service can be restarted.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.injected = true
		}
	}
}

// WithStoreOptions selects the backend Start opens when no store is injected.
func WithStoreOptions(opts repository.Options) Option {
	return func(s *Service) {
		s.storeOpts = opts
	}
}

// New constructs a Service. Call Start before serving requests.
func New(opts ...Option) *Service {
	s := &Service{
		storeOpts: repository.Options{Driver: repository.DriverMemory, Table: "scores"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s
}

// Start opens the store if needed. It is safe to call more than once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		store, err := repository.Open(ctx, s.storeOpts)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "scoreboard service started",
		logger.String("driver", s.driverName()),
		logger.Bool("injected_store", s.injected),
	)
	return nil
}

// Stop closes a store opened by Start and waits for in-flight store calls.
// An injected store stays open.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if !s.injected {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing store failed", logger.Error(err))
		}
		s.store = nil
	}
	s.started = false
	s.logger.Info(ctx, "scoreboard service stopped")
}

func (s *Service) driverName() string {
	if d, ok := s.store.(interface{ Driver() string }); ok {
		return d.Driver()
	}
	if s.injected {
		return "custom"
	}
	return s.storeOpts.Driver
}

// withStore runs fn under the read lock so Stop cannot close the store while
// fn is using it.
func (s *Service) withStore(fn func(repository.Store) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return fn(s.store)
}

// Submit validates a game result and folds it into the player's record with
// exactly one store read and one store write. The read-then-write is not
// atomic: concurrent submissions for one player can lose an update.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (model.PlayerRecord, error) {
	sub, err := stats.Parse(in.Name, in.Time, in.Level)
	if err != nil {
		return model.PlayerRecord{}, s.reject(ctx, err)
	}

	var out model.PlayerRecord
	err = s.withStore(func(store repository.Store) error {
		var err error
		out, err = s.fold(ctx, store, sub)
		return err
	})
	if err != nil {
		return model.PlayerRecord{}, err
	}
	s.accepted.Add(1)
	metrics.RecordSubmission(string(sub.Level), sub.Adjusted())
	return out, nil
}

// fold applies sub to the player's record with one read and one write.
func (s *Service) fold(ctx context.Context, store repository.Store, sub stats.Submission) (model.PlayerRecord, error) {
	prev, err := store.Get(ctx, sub.Name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		rec := stats.NewRecord(sub)
		if !stats.Finite(rec) {
			return model.PlayerRecord{}, s.reject(ctx, overflowError(sub))
		}
		if err := store.Insert(ctx, rec); err != nil {
			return model.PlayerRecord{}, s.storeError(ctx, "insert", sub.Name, err)
		}
		s.players.Add(1)
		metrics.RecordPlayerCreated()
		s.logger.Info(ctx, "player created",
			logger.String("name", sub.Name),
			logger.String("level", string(sub.Level)),
			logger.Float64("time", sub.Time),
		)
		return rec, nil
	case err != nil:
		return model.PlayerRecord{}, s.storeError(ctx, "get", sub.Name, err)
	}

	patch := stats.Next(prev, sub)
	if !stats.FinitePatch(patch) {
		return model.PlayerRecord{}, s.reject(ctx, overflowError(sub))
	}
	if err := store.Update(ctx, sub.Name, patch); err != nil {
		return model.PlayerRecord{}, s.storeError(ctx, "update", sub.Name, err)
	}
	patch.ApplyTo(&prev)

	s.logger.Debug(ctx, "player updated",
		logger.String("name", sub.Name),
		logger.String("level", string(sub.Level)),
		logger.Int("overall_games", prev.OverallGames),
		logger.Float64("overall_avg", patch.Overall.Avg),
	)
	return prev, nil
}

func overflowError(sub stats.Submission) error {
	return fmt.Errorf("%w: average for %q overflows", stats.ErrInvalidTime, sub.Name)
}

// reject counts a validation failure and returns err.
func (s *Service) reject(ctx context.Context, err error) error {
	s.rejected.Add(1)
	metrics.RecordSubmissionRejected(rejectReason(err))
	s.logger.Debug(ctx, "submission rejected", logger.Error(err))
	return err
}

// Leaderboard returns every record ordered ascending by overall average,
// null averages last, ties in store order.
func (s *Service) Leaderboard(ctx context.Context) ([]model.PlayerRecord, error) {
	var recs []model.PlayerRecord
	err := s.withStore(func(store repository.Store) error {
		var err error
		if recs, err = store.List(ctx); err != nil {
			return s.storeError(ctx, "list", "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.PlayerRecord{}
	}
	s.players.Store(int64(len(recs)))
	metrics.RecordLeaderboardRead(len(recs))
	return leaderboard.Sort(recs), nil
}

// storeError maps a store failure to a service error kind and logs it.
func (s *Service) storeError(ctx context.Context, op, name string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrNotFound) {
		// The row appeared or vanished between our read and write.
		s.logger.Warn(ctx, "concurrent write detected",
			logger.String("op", op), logger.String("name", name), logger.Error(err))
		return fmt.Errorf("%w: %s %q: %w", ErrConflict, op, name, err)
	}
	s.logger.Error(ctx, "store operation failed",
		logger.String("op", op), logger.String("name", name), logger.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, stats.ErrInvalidLevel):
		return "invalid_level"
	case errors.Is(err, stats.ErrMissingTime), errors.Is(err, stats.ErrInvalidTime):
		return "invalid_time"
	case errors.Is(err, stats.ErrMissingName), errors.Is(err, stats.ErrInvalidName):
		return "invalid_name"
	default:
		return "invalid_input"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]any{
		"started":             s.started,
		"driver":              s.driverName(),
		"submissionsAccepted": s.accepted.Load(),
		"submissionsRejected": s.rejected.Load(),
		"players":             s.players.Load(),
	}
	if s.started {
		out["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	return out
}
