package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"github.com/okian/scoreboard/internal/domain/model"
)

const (
	restPath      = "/rest/v1"
	defaultSchema = "public"
)

// SupabaseStore talks to a Supabase (PostgREST) table over HTTPS.
//
// The postgrest client builds requests without a context; cancellation is
// left to the client's own transport.
type SupabaseStore struct {
	client *postgrest.Client
	table  string
}

// NewSupabaseStore builds a client for the project at baseURL authenticated
// with key. baseURL may or may not already end in /rest/v1.
func NewSupabaseStore(baseURL, key, table string) (*SupabaseStore, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	if !strings.HasSuffix(baseURL, restPath) {
		baseURL += restPath
	}
	client := postgrest.NewClient(baseURL, defaultSchema, map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	if client.ClientError != nil {
		return nil, client.ClientError
	}
	return &SupabaseStore{client: client, table: table}, nil
}

// Get implements Store.
func (s *SupabaseStore) Get(_ context.Context, name string) (model.PlayerRecord, error) {
	var rows []model.PlayerRecord
	if _, err := s.client.From(s.table).Select("*", "", false).Eq(model.ColumnName, name).ExecuteTo(&rows); err != nil {
		return model.PlayerRecord{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(rows) == 0 {
		return model.PlayerRecord{}, ErrNotFound
	}
	return rows[0], nil
}

// List implements Store.
func (s *SupabaseStore) List(_ context.Context) ([]model.PlayerRecord, error) {
	rows := []model.PlayerRecord{}
	if _, err := s.client.From(s.table).Select("*", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if rows == nil {
		rows = []model.PlayerRecord{}
	}
	return rows, nil
}

// Insert implements Store.
func (s *SupabaseStore) Insert(_ context.Context, rec model.PlayerRecord) error {
	_, _, err := s.client.From(s.table).Insert(rec, false, "", "minimal", "").Execute()
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Update implements Store.
func (s *SupabaseStore) Update(_ context.Context, name string, patch model.Patch) error {
	if !patch.Level.Valid() {
		return ErrBadPatch
	}
	var rows []model.PlayerRecord
	_, err := s.client.From(s.table).Update(patch.Columns(), "representation", "").Eq(model.ColumnName, name).ExecuteTo(&rows)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store. The HTTP client holds no resources worth releasing.
func (s *SupabaseStore) Close() error { return nil }

// isUniqueViolation matches PostgreSQL's unique_violation (23505) as relayed
// by PostgREST in the error message.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
