package draft

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// PgStore is a PostgreSQL-backed Store using pgx/v5.
//
// Schema:
//
//	CREATE TABLE wizard_drafts (
//	    key        TEXT PRIMARY KEY,
//	    step       INT NOT NULL,
//	    state      JSONB NOT NULL,
//	    last_saved TIMESTAMPTZ NOT NULL
//	);
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL draft store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Save upserts the draft under key.
func (s *PgStore) Save(ctx context.Context, key string, d model.Draft) error {
	stateJSON, err := json.Marshal(d.State)
	if err != nil {
		return fmt.Errorf("marshal draft state: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO wizard_drafts (key, step, state, last_saved)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET step = EXCLUDED.step, state = EXCLUDED.state, last_saved = EXCLUDED.last_saved`,
		key, d.Step, stateJSON, d.LastSaved,
	)
	if err != nil {
		return fmt.Errorf("upsert draft %q: %w", key, err)
	}
	return nil
}

// Load retrieves the draft under key.
func (s *PgStore) Load(ctx context.Context, key string) (model.Draft, bool, error) {
	var env envelope
	var stateJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT step, state, last_saved
		FROM wizard_drafts
		WHERE key = $1`,
		key,
	).Scan(&env.Step, &stateJSON, &env.LastSaved)
	if err == pgx.ErrNoRows {
		return model.Draft{}, false, nil
	}
	if err != nil {
		return model.Draft{}, false, fmt.Errorf("query draft %q: %w", key, err)
	}

	if err := json.Unmarshal(stateJSON, &env.State); err != nil {
		return model.Draft{}, false, fmt.Errorf("unmarshal draft state %q: %w", key, err)
	}

	d := model.Draft{
		Step:      env.Step,
		State:     model.DefaultConfiguration(),
		LastSaved: env.LastSaved,
	}
	decodeState(env.State, &d.State)
	return d, true, nil
}

// Clear removes the draft under key.
func (s *PgStore) Clear(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM wizard_drafts WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete draft %q: %w", key, err)
	}
	return nil
}

// Ping checks connectivity, for readiness probes.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
