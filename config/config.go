// Package config loads the simulation settings from YAML.
//
// Every field has a default, a file only needs the keys it overrides.
// Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/akmonengine/dogfight/flight"
	"github.com/akmonengine/dogfight/log"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Log        log.Config       `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
	Flight     FlightConfig     `yaml:"flight"`
	// Scene is the path of a scene file, the built-in scene is used when empty
	Scene string `yaml:"scene"`
}

type SimulationConfig struct {
	// Workers bounds the goroutines used by the flight and collision updates
	Workers int    `yaml:"workers"`
	AIMode  string `yaml:"ai_mode"`
	Seed    uint64 `yaml:"seed"`
	// TickRate is the amount of ticks per second driven by the front-ends
	TickRate          float64       `yaml:"tick_rate"`
	DiagnosticsPeriod time.Duration `yaml:"diagnostics_period"`
}

// FlightConfig mirrors flight.Params
type FlightConfig struct {
	PitchThreshold      float32 `yaml:"pitch_threshold"`
	RollThreshold       float32 `yaml:"roll_threshold"`
	InputDeadband       float32 `yaml:"input_deadband"`
	AITurnRate          float32 `yaml:"ai_turn_rate"`
	AIAltitudeThreshold float32 `yaml:"ai_altitude_threshold"`
	AIClimbRate         float32 `yaml:"ai_climb_rate"`
}

func Default() Config {
	p := flight.DefaultParams()
	return Config{
		Log: log.DefaultConfig(),
		Simulation: SimulationConfig{
			Workers:           1,
			AIMode:            flight.AIModePursuit.String(),
			Seed:              1234,
			TickRate:          60,
			DiagnosticsPeriod: time.Second,
		},
		Flight: FlightConfig{
			PitchThreshold:      p.PitchThreshold,
			RollThreshold:       p.RollThreshold,
			InputDeadband:       p.InputDeadband,
			AITurnRate:          p.AITurnRate,
			AIAltitudeThreshold: p.AIAltitudeThreshold,
			AIClimbRate:         p.AIClimbRate,
		},
	}
}

func (f FlightConfig) Params() flight.Params {
	return flight.Params{
		PitchThreshold:      f.PitchThreshold,
		RollThreshold:       f.RollThreshold,
		InputDeadband:       f.InputDeadband,
		AITurnRate:          f.AITurnRate,
		AIAltitudeThreshold: f.AIAltitudeThreshold,
		AIClimbRate:         f.AIClimbRate,
	}
}

// Mode returns the parsed AI mode, pursuit when invalid
func (s SimulationConfig) Mode() flight.AIMode {
	mode, _ := flight.ParseAIMode(s.AIMode)
	return mode
}

// TickDuration is the fixed step matching TickRate
func (s SimulationConfig) TickDuration() time.Duration {
	return time.Duration(float64(time.Second) / s.TickRate)
}

func (c Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := flight.ParseAIMode(c.Simulation.AIMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch {
	case c.Simulation.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, c.Simulation.Workers)
	case c.Simulation.TickRate <= 0:
		return fmt.Errorf("%w: tick rate must be > 0, got %v", ErrInvalidConfig, c.Simulation.TickRate)
	case c.Simulation.DiagnosticsPeriod < 0:
		return fmt.Errorf("%w: negative diagnostics period", ErrInvalidConfig)
	case c.Flight.PitchThreshold <= 0 || c.Flight.PitchThreshold > 1:
		return fmt.Errorf("%w: pitch threshold must be in (0, 1], got %v", ErrInvalidConfig, c.Flight.PitchThreshold)
	case c.Flight.RollThreshold < 0:
		return fmt.Errorf("%w: negative roll threshold", ErrInvalidConfig)
	case c.Flight.InputDeadband < 0:
		return fmt.Errorf("%w: negative input deadband", ErrInvalidConfig)
	case c.Flight.AITurnRate <= 0 || c.Flight.AIClimbRate < 0 || c.Flight.AIAltitudeThreshold < 0:
		return fmt.Errorf("%w: ai rates must be positive", ErrInvalidConfig)
	}
	return nil
}

// Load decodes a YAML document over the defaults and validates the result.
// An empty document yields the defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return Load(f)
}
