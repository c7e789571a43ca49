package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/udisondev/orbitguard/internal/model"
)

// FinishEncounter records a decided encounter and empties the save slot in one
// transaction, so a finished encounter is never resumed from a stale save.
func (d *DB) FinishEncounter(ctx context.Context, res model.EncounterResult) (int64, error) {
	if res.FinishedAt.IsZero() {
		res.FinishedAt = time.Now()
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "outcome", res.Outcome, "error", err)
		}
	}()

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO encounter_results (outcome, rule, score, ships_destroyed, turret_health, elapsed_seconds, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		res.Outcome, res.Rule, res.Score, res.ShipsDestroyed, res.TurretHealth, res.Elapsed, res.FinishedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording encounter result: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM save_games WHERE slot = $1`, saveSlot); err != nil {
		return 0, fmt.Errorf("clearing save slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}
