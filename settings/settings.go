package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/oomph-ac/locomotion/movesim"
	"gopkg.in/yaml.v3"
)

// Settings contains all tunables of the locomotion runtime.
type Settings struct {
	Prediction struct {
		// EnableMoveCombining allows the client to hold a move back and merge it with the next one.
		EnableMoveCombining bool `yaml:"enable_move_combining" mapstructure:"enable_move_combining"`
		// MaxMoveDeltaTime is the largest delta time a combined move may have.
		MaxMoveDeltaTime float32 `yaml:"max_move_delta_time" mapstructure:"max_move_delta_time"`
		// MaxSavedMoves is the number of unacknowledged moves the client keeps for replay.
		MaxSavedMoves int `yaml:"max_saved_moves" mapstructure:"max_saved_moves"`
		// MaxPositionErrorSquared is the squared location error tolerated before the server corrects.
		MaxPositionErrorSquared float32 `yaml:"max_position_error_squared" mapstructure:"max_position_error_squared"`
		// HistorySize is the number of frames the server remembers.
		HistorySize int `yaml:"history_size" mapstructure:"history_size"`
	} `yaml:"prediction" mapstructure:"prediction"`

	Smoothing struct {
		SmoothLocationTime             float32 `yaml:"smooth_location_time" mapstructure:"smooth_location_time"`
		ListenServerSmoothLocationTime float32 `yaml:"listen_server_smooth_location_time" mapstructure:"listen_server_smooth_location_time"`
		MaxClientSmoothingDeltaTime    float32 `yaml:"max_client_smoothing_delta_time" mapstructure:"max_client_smoothing_delta_time"`
	} `yaml:"smoothing" mapstructure:"smoothing"`

	Simulation struct {
		MaxSimulationTimeStep   float32 `yaml:"max_simulation_time_step" mapstructure:"max_simulation_time_step"`
		MaxSimulationIterations int     `yaml:"max_simulation_iterations" mapstructure:"max_simulation_iterations"`
		Gravity                 float32 `yaml:"gravity" mapstructure:"gravity"`
	} `yaml:"simulation" mapstructure:"simulation"`

	Debug struct {
		// LogCorrections logs every server correction at debug level.
		LogCorrections bool `yaml:"log_corrections" mapstructure:"log_corrections"`
		// TraceSimulation forwards the movement simulator's traces to the logger.
		TraceSimulation bool `yaml:"trace_simulation" mapstructure:"trace_simulation"`
	} `yaml:"debug" mapstructure:"debug"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Prediction.EnableMoveCombining = true
	s.Prediction.MaxMoveDeltaTime = 0.125
	s.Prediction.MaxSavedMoves = 96
	s.Prediction.MaxPositionErrorSquared = movesim.DefaultMaxPositionErrorSquared
	s.Prediction.HistorySize = 64

	s.Smoothing.SmoothLocationTime = 0.1
	s.Smoothing.ListenServerSmoothLocationTime = 0.04
	s.Smoothing.MaxClientSmoothingDeltaTime = 0.5

	s.Simulation.MaxSimulationTimeStep = movesim.DefaultMaxSimulationTimeStep
	s.Simulation.MaxSimulationIterations = movesim.DefaultMaxSimulationIterations
	s.Simulation.Gravity = movesim.DefaultGravityZ

	s.Debug.LogCorrections = true
	return s
}

// SimulationOptions returns movement simulator options with the simulation settings applied.
func (s Settings) SimulationOptions() movesim.SimulationOptions {
	opts := movesim.DefaultOptions()
	opts.MaxSimulationTimeStep = s.Simulation.MaxSimulationTimeStep
	opts.MaxSimulationIterations = s.Simulation.MaxSimulationIterations
	opts.Gravity = s.Simulation.Gravity
	opts.MaxPositionErrorSquared = s.Prediction.MaxPositionErrorSquared
	return opts
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("settings file already exists")
	}
	data, err := yaml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("failed encoding default settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed creating settings file: %w", err)
	}
	return nil
}

// Load will load the settings from your settings file on top of the defaults, and return an error if the
// file does not exist.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading settings: %w", err)
	}

	settings := DefaultSettings()
	if err = yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding settings: %w", err)
	}
	return settings, nil
}
