package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/scoreboard/internal/domain/model"
	"github.com/okian/scoreboard/pkg/metrics"
)

// Instrumented decorates a Store with latency and error metrics.
type Instrumented struct {
	next   Store
	driver string
}

// Instrument wraps next, labelling metrics with driver.
func Instrument(next Store, driver string) *Instrumented {
	return &Instrumented{next: next, driver: driver}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(s.driver, op, float64(time.Since(start).Microseconds())/1000)
	// Absent and duplicate rows are answers, not failures.
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDuplicate) {
		metrics.RecordStoreError(s.driver, op)
	}
}

// Get implements Store.
func (s *Instrumented) Get(ctx context.Context, name string) (rec model.PlayerRecord, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, name)
}

// List implements Store.
func (s *Instrumented) List(ctx context.Context) (recs []model.PlayerRecord, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	recs, err = s.next.List(ctx)
	if err == nil {
		metrics.UpdateTotalPlayers(len(recs))
	}
	return recs, err
}

// Insert implements Store.
func (s *Instrumented) Insert(ctx context.Context, rec model.PlayerRecord) (err error) {
	defer func(start time.Time) { s.observe("insert", start, err) }(time.Now())
	return s.next.Insert(ctx, rec)
}

// Update implements Store.
func (s *Instrumented) Update(ctx context.Context, name string, patch model.Patch) (err error) {
	defer func(start time.Time) { s.observe("update", start, err) }(time.Now())
	return s.next.Update(ctx, name, patch)
}

// Close implements Store.
func (s *Instrumented) Close() error {
	return s.next.Close()
}

// Driver returns the metrics label of the wrapped store.
func (s *Instrumented) Driver() string { return s.driver }
