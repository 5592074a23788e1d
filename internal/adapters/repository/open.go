package repository

import (
	"context"
	"fmt"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverSupabase = "supabase"
	DriverMongo    = "mongo"
)

// Options selects and configures a store backend.
type Options struct {
	Driver        string
	URL           string
	Key           string
	Table         string
	SQLitePath    string
	MongoDatabase string
}

// Open builds the store named by opts.Driver and wraps it with metrics.
// The returned store is meant to be created once per process and shared.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Driver {
	case DriverMemory, "":
		s = NewMemoryStore()
	case DriverSQLite:
		s, err = NewSQLiteStore(ctx, opts.SQLitePath, opts.Table)
	case DriverSupabase:
		s, err = NewSupabaseStore(opts.URL, opts.Key, opts.Table)
	case DriverMongo:
		s, err = NewMongoStore(ctx, opts.URL, opts.MongoDatabase, opts.Table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
	}
	driver := opts.Driver
	if driver == "" {
		driver = DriverMemory
	}
	return Instrument(s, driver), nil
}
