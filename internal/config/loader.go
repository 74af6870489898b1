// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const maxRingPower = 30

// Load reads the YAML configuration file at path and returns a validated
// [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over [Default] and validates
// the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Output
	if !cfg.Output.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("output.driver %q is invalid; valid values: portaudio, null, wav", cfg.Output.Driver))
	}
	if cfg.Output.FramesPerBuffer < 0 {
		errs = append(errs, fmt.Errorf("output.frames_per_buffer %d must not be negative", cfg.Output.FramesPerBuffer))
	}
	if cfg.Output.FramesPerBuffer == 0 && cfg.Output.Driver != DriverPortAudio {
		errs = append(errs, fmt.Errorf("output.frames_per_buffer is required for driver %q", cfg.Output.Driver))
	}
	if cfg.Output.Driver == DriverWAV && cfg.Output.WAVPath == "" {
		errs = append(errs, errors.New("output.wav_path is required for driver \"wav\""))
	}
	if cfg.Output.Device != "" && cfg.Output.Driver != DriverPortAudio {
		slog.Warn("output.device is only used by the portaudio driver", "driver", cfg.Output.Driver)
	}

	// Engine
	if cfg.Engine.RingPower < 1 || cfg.Engine.RingPower > maxRingPower {
		errs = append(errs, fmt.Errorf("engine.ring_power %d is out of range [1, %d]", cfg.Engine.RingPower, maxRingPower))
	} else if cfg.Engine.SpinUpSamples > 1<<cfg.Engine.RingPower {
		slog.Warn("engine.spinup_samples exceeds the ring buffer; pre-fill stops at a full buffer",
			"spinup_samples", cfg.Engine.SpinUpSamples,
			"capacity", 1<<cfg.Engine.RingPower,
		)
	}
	if cfg.Engine.SpinUpSamples < 0 {
		errs = append(errs, fmt.Errorf("engine.spinup_samples %d must not be negative", cfg.Engine.SpinUpSamples))
	}
	if cfg.Engine.MaxPreFillUpdates < 0 {
		errs = append(errs, fmt.Errorf("engine.max_prefill_updates %d must not be negative", cfg.Engine.MaxPreFillUpdates))
	}

	// Player
	if cfg.Player.PositionPeriod < 0 {
		errs = append(errs, fmt.Errorf("player.position_period %s must not be negative", cfg.Player.PositionPeriod))
	}
	if cfg.Player.LoopPeriod <= 0 {
		errs = append(errs, fmt.Errorf("player.loop_period %s must be positive", cfg.Player.LoopPeriod))
	}

	return errors.Join(errs...)
}
