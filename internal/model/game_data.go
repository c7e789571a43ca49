package model

import "time"

// GameData is the persisted save slot: score, turret health and progress.
// Controller internals are never saved.
type GameData struct {
	TotalScore          int
	TurretCurrentHealth float64
	TurretMaxHealth     float64
	Phase               string // running, victory or defeat
	ShipsDestroyed      int
	Elapsed             float64 // seconds of simulation time
	SavedAt             time.Time
}

// EncounterResult is one finished encounter stored in the history table.
type EncounterResult struct {
	ID             int64
	Outcome        string
	Rule           string
	Score          int
	ShipsDestroyed int
	TurretHealth   float64
	Elapsed        float64
	FinishedAt     time.Time
}
