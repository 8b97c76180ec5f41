// Package store persists saved configurations in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/costcalc/internal/model"
)

// ErrNotFound is returned when no configuration has the requested id.
var ErrNotFound = errors.New("configuration not found")

// Store reads and writes the configurations table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a store over an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create saves a snapshot of state and returns it with its id and creation time.
func (s *Store) Create(ctx context.Context, state model.FormState) (model.SavedConfiguration, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return model.SavedConfiguration{}, fmt.Errorf("encode configuration: %w", err)
	}

	createdAt := s.now().Truncate(time.Second)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO configurations (name, container_type, batch_size, selling_price, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, state.Name, state.ContainerType, state.BatchSize, state.SellingPrice, string(payload), createdAt.Format(time.RFC3339))
	if err != nil {
		return model.SavedConfiguration{}, fmt.Errorf("insert configuration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.SavedConfiguration{}, fmt.Errorf("read configuration id: %w", err)
	}

	return model.SavedConfiguration{
		FormState: state,
		ID:        id,
		CreatedAt: model.Timestamp{Time: createdAt},
	}, nil
}

// List returns every configuration in the order it was saved.
func (s *Store) List(ctx context.Context) ([]model.SavedConfiguration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload_json, created_at
		FROM configurations
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query configurations: %w", err)
	}
	defer rows.Close()

	configs := make([]model.SavedConfiguration, 0)
	for rows.Next() {
		cfg, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configurations: %w", err)
	}

	return configs, nil
}

// Get returns one configuration.
func (s *Store) Get(ctx context.Context, id int64) (model.SavedConfiguration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, payload_json, created_at
		FROM configurations
		WHERE id = ?
	`, id)

	cfg, err := scanConfiguration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedConfiguration{}, ErrNotFound
	}
	if err != nil {
		return model.SavedConfiguration{}, err
	}
	return cfg, nil
}

// Delete removes a configuration. Deleting a missing id is not an error;
// the returned flag reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM configurations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete configuration: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete configuration: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of saved configurations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM configurations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count configurations: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfiguration(row scanner) (model.SavedConfiguration, error) {
	var (
		cfg       model.SavedConfiguration
		payload   string
		createdAt string
	)
	if err := row.Scan(&cfg.ID, &payload, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cfg, err
		}
		return cfg, fmt.Errorf("scan configuration: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &cfg.FormState); err != nil {
		return cfg, fmt.Errorf("decode configuration %d: %w", cfg.ID, err)
	}
	if cfg.Items == nil {
		cfg.Items = make(map[model.Category][]model.LineItem)
	}

	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return cfg, fmt.Errorf("parse created_at of configuration %d: %w", cfg.ID, err)
	}
	cfg.CreatedAt = model.Timestamp{Time: parsed}

	return cfg, nil
}
