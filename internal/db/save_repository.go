package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/orbitguard/internal/model"
)

// ErrNoSave is returned when the save slot is empty.
var ErrNoSave = errors.New("no saved game")

// saveSlot is the single save slot used by the simulation.
const saveSlot = 1

// SaveRepository stores the save slot.
type SaveRepository struct {
	pool *pgxpool.Pool
}

// NewSaveRepository creates a new save repository.
func NewSaveRepository(pool *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{pool: pool}
}

// SaveGame writes the slot, replacing any previous save.
// A zero SavedAt is stamped with the current time.
func (r *SaveRepository) SaveGame(ctx context.Context, data model.GameData) error {
	if data.SavedAt.IsZero() {
		data.SavedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO save_games
		    (slot, total_score, turret_current_health, turret_max_health, phase, ships_destroyed, elapsed_seconds, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (slot) DO UPDATE SET
		    total_score = EXCLUDED.total_score,
		    turret_current_health = EXCLUDED.turret_current_health,
		    turret_max_health = EXCLUDED.turret_max_health,
		    phase = EXCLUDED.phase,
		    ships_destroyed = EXCLUDED.ships_destroyed,
		    elapsed_seconds = EXCLUDED.elapsed_seconds,
		    saved_at = EXCLUDED.saved_at`,
		saveSlot, max(data.TotalScore, 0), data.TurretCurrentHealth, data.TurretMaxHealth,
		data.Phase, data.ShipsDestroyed, data.Elapsed, data.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("saving game: %w", err)
	}
	return nil
}

// LoadGame reads the slot. Returns ErrNoSave if nothing was saved.
func (r *SaveRepository) LoadGame(ctx context.Context) (model.GameData, error) {
	var data model.GameData
	err := r.pool.QueryRow(ctx,
		`SELECT total_score, turret_current_health, turret_max_health, phase, ships_destroyed, elapsed_seconds, saved_at
		 FROM save_games WHERE slot = $1`, saveSlot,
	).Scan(&data.TotalScore, &data.TurretCurrentHealth, &data.TurretMaxHealth,
		&data.Phase, &data.ShipsDestroyed, &data.Elapsed, &data.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GameData{}, ErrNoSave
		}
		return model.GameData{}, fmt.Errorf("loading game: %w", err)
	}
	return data, nil
}

// HasSave reports whether the slot holds a save.
func (r *SaveRepository) HasSave(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM save_games WHERE slot = $1)`, saveSlot,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking save: %w", err)
	}
	return exists, nil
}

// DeleteGame empties the slot. Deleting an empty slot is not an error.
func (r *SaveRepository) DeleteGame(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM save_games WHERE slot = $1`, saveSlot); err != nil {
		return fmt.Errorf("deleting save: %w", err)
	}
	return nil
}
