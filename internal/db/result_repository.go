package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/orbitguard/internal/model"
)

// ResultRepository stores finished encounters.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new result repository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Record inserts a finished encounter and returns its ID.
func (r *ResultRepository) Record(ctx context.Context, res model.EncounterResult) (int64, error) {
	if res.FinishedAt.IsZero() {
		res.FinishedAt = time.Now()
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO encounter_results (outcome, rule, score, ships_destroyed, turret_health, elapsed_seconds, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		res.Outcome, res.Rule, res.Score, res.ShipsDestroyed, res.TurretHealth, res.Elapsed, res.FinishedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording encounter result: %w", err)
	}
	return id, nil
}

// Recent returns the latest results, newest first.
func (r *ResultRepository) Recent(ctx context.Context, limit int) ([]model.EncounterResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, outcome, rule, score, ships_destroyed, turret_health, elapsed_seconds, finished_at
		 FROM encounter_results
		 ORDER BY finished_at DESC, id DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent results: %w", err)
	}

	results, err := pgx.CollectRows(rows, scanResult)
	if err != nil {
		return nil, fmt.Errorf("scanning recent results: %w", err)
	}
	return results, nil
}

// BestScore returns the highest recorded victory score, or 0 if there is none.
func (r *ResultRepository) BestScore(ctx context.Context) (int, error) {
	var best int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(score), 0) FROM encounter_results WHERE outcome = 'victory'`,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("querying best score: %w", err)
	}
	return best, nil
}

func scanResult(row pgx.CollectableRow) (model.EncounterResult, error) {
	var res model.EncounterResult
	err := row.Scan(&res.ID, &res.Outcome, &res.Rule, &res.Score,
		&res.ShipsDestroyed, &res.TurretHealth, &res.Elapsed, &res.FinishedAt)
	return res, err
}
