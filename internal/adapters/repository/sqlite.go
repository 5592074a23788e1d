package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/okian/scoreboard/internal/domain/model"
)

const defaultSQLitePath = "scores.db"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore persists records in a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// NewSQLiteStore opens path and creates the scores table if it is missing.
func NewSQLiteStore(ctx context.Context, path, table string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultSQLitePath
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s := &SQLiteStore{db: db, table: table}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// overall_avg stays nullable so rows written by other tools keep their shape.
	stmt := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		name TEXT PRIMARY KEY,
		overall_avg REAL,
		overall_games INTEGER NOT NULL DEFAULT 0,
		easy_avg REAL NOT NULL DEFAULT 0,
		easy_games INTEGER NOT NULL DEFAULT 0,
		medium_avg REAL NOT NULL DEFAULT 0,
		medium_games INTEGER NOT NULL DEFAULT 0,
		hard_avg REAL NOT NULL DEFAULT 0,
		hard_games INTEGER NOT NULL DEFAULT 0
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

const selectColumns = `name, overall_avg, overall_games, easy_avg, easy_games, medium_avg, medium_games, hard_avg, hard_games`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.PlayerRecord, error) {
	var (
		r   model.PlayerRecord
		avg sql.NullFloat64
	)
	err := row.Scan(&r.Name, &avg, &r.OverallGames,
		&r.EasyAvg, &r.EasyGames, &r.MediumAvg, &r.MediumGames, &r.HardAvg, &r.HardGames)
	if err != nil {
		return model.PlayerRecord{}, err
	}
	if avg.Valid {
		r.OverallAvg = model.Float(avg.Float64)
	}
	return r, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, name string) (model.PlayerRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM `+s.table+` WHERE name = ?`, name)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlayerRecord{}, ErrNotFound
	}
	if err != nil {
		return model.PlayerRecord{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return r, nil
}

// List implements Store. Rows come back in insertion (rowid) order.
func (s *SQLiteStore) List(ctx context.Context) ([]model.PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM `+s.table+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	out := []model.PlayerRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, nil
}

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, rec model.PlayerRecord) error {
	var avg sql.NullFloat64
	if rec.OverallAvg != nil {
		avg = sql.NullFloat64{Float64: *rec.OverallAvg, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Name, avg, rec.OverallGames,
		rec.EasyAvg, rec.EasyGames, rec.MediumAvg, rec.MediumGames, rec.HardAvg, rec.HardGames,
	)
	if isConstraint(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Update implements Store. Only the patched level's columns are written.
func (s *SQLiteStore) Update(ctx context.Context, name string, patch model.Patch) error {
	if !patch.Level.Valid() {
		return ErrBadPatch
	}
	stmt := fmt.Sprintf(`UPDATE %s SET name = ?, overall_avg = ?, overall_games = ?, %s = ?, %s = ? WHERE name = ?`,
		s.table, patch.Level.AvgColumn(), patch.Level.GamesColumn())
	res, err := s.db.ExecContext(ctx, stmt,
		patch.Name, patch.Overall.Avg, patch.Overall.Games, patch.Stats.Avg, patch.Stats.Games, name)
	if isConstraint(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
