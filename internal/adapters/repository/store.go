// Package repository defines the score store interface and its backends.
package repository

import (
	"context"

	"github.com/okian/scoreboard/internal/domain/model"
)

// Store is row-oriented persistence of player records keyed by canonical name.
//
// Implementations must be safe for concurrent use. Get followed by Insert or
// Update is not atomic; callers accept lost updates for concurrent writers.
type Store interface {
	// Get returns the record for name, or ErrNotFound.
	Get(ctx context.Context, name string) (model.PlayerRecord, error)

	// List returns every record in the store's natural order.
	List(ctx context.Context) ([]model.PlayerRecord, error)

	// Insert creates a record. Returns ErrDuplicate if the name exists.
	Insert(ctx context.Context, rec model.PlayerRecord) error

	// Update writes the patched columns of an existing record.
	// Returns ErrNotFound if no record matches name.
	Update(ctx context.Context, name string, patch model.Patch) error

	// Close releases the underlying client.
	Close() error
}
