package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when ORBITGUARD_CONFIG is not set.
const DefaultPath = "config/orbitguard.yaml"

// PathEnv names the environment variable overriding the config path.
const PathEnv = "ORBITGUARD_CONFIG"

// Config holds all configuration for the orbitguard simulation server.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug|info|warn|error

	Simulation Simulation `yaml:"simulation"`
	Turret     Turret     `yaml:"turret"`
	AI         AI         `yaml:"ai"`
	Ships      []ShipType `yaml:"ships"`
	Spawner    Spawner    `yaml:"spawner"`
	Encounter  Encounter  `yaml:"encounter"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	AutosaveInterval time.Duration `yaml:"autosave_interval"` // 0 disables periodic saves
	StatusInterval   time.Duration `yaml:"status_interval"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel:   "info",
		Simulation: DefaultSimulation(),
		Turret:     DefaultTurret(),
		AI:         DefaultAI(),
		Ships:      DefaultShips(),
		Spawner:    DefaultSpawner(),
		Encounter:  DefaultEncounter(),
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "orbitguard",
			Password: "orbitguard",
			DBName:   "orbitguard",
			SSLMode:  "disable",
		},
		AutosaveInterval: 30 * time.Second,
		StatusInterval:   5 * time.Second,
	}
}

// Path returns the config path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects structurally broken configs.
// Radii and speeds are taken as given.
func (c Config) Validate() error {
	var errs []error

	if c.Simulation.FrameInterval <= 0 {
		errs = append(errs, errors.New("simulation.frame_interval must be positive"))
	}
	if c.Simulation.PhysicsStep <= 0 {
		errs = append(errs, errors.New("simulation.physics_step must be positive"))
	}
	if len(c.Ships) == 0 {
		errs = append(errs, errors.New("ships: at least one ship type is required"))
	}
	names := make(map[string]struct{}, len(c.Ships))
	for i, s := range c.Ships {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("ships[%d]: name is required", i))
			continue
		}
		if _, dup := names[s.Name]; dup {
			errs = append(errs, fmt.Errorf("ships[%d]: duplicate name %q", i, s.Name))
		}
		names[s.Name] = struct{}{}
	}
	if c.Spawner.MaxAttempts < 1 {
		errs = append(errs, errors.New("spawner.max_attempts must be at least 1"))
	}
	for i, r := range c.Encounter.Rules {
		if r.When == "" {
			errs = append(errs, fmt.Errorf("encounter.rules[%d]: when is required", i))
		}
		if r.Outcome != "victory" && r.Outcome != "defeat" {
			errs = append(errs, fmt.Errorf("encounter.rules[%d]: outcome must be victory or defeat, got %q", i, r.Outcome))
		}
	}

	return errors.Join(errs...)
}
