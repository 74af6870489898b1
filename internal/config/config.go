// SPDX-License-Identifier: EPL-2.0

// Package config provides the configuration schema and loader for audplay.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to its slog level. Unknown levels map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Driver selects the audio output.
type Driver string

const (
	// DriverPortAudio plays through a sound card.
	DriverPortAudio Driver = "portaudio"
	// DriverNull plays in real time into nothing. YAML needs it quoted.
	DriverNull Driver = "null"
	// DriverWAV records playback into a WAV file.
	DriverWAV Driver = "wav"
)

func (d Driver) IsValid() bool {
	switch d {
	case DriverPortAudio, DriverNull, DriverWAV:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from
// a YAML file using [Load] or [LoadFromReader].
type Config struct {
	LogLevel LogLevel      `yaml:"log_level"`
	Output   OutputConfig  `yaml:"output"`
	Engine   EngineConfig  `yaml:"engine"`
	Player   PlayerConfig  `yaml:"player"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

type OutputConfig struct {
	Driver Driver `yaml:"driver"`

	// Device is a PortAudio device index or name. Empty selects the
	// default output device.
	Device string `yaml:"device"`

	// FramesPerBuffer is the number of samples asked for per callback.
	// Zero lets PortAudio choose; the other drivers need a positive value.
	FramesPerBuffer int `yaml:"frames_per_buffer"`

	// WAVPath is where the wav driver writes. Required for that driver.
	WAVPath string `yaml:"wav_path"`
}

type EngineConfig struct {
	// RingPower sizes the ring buffer at 2^RingPower samples.
	RingPower uint `yaml:"ring_power"`

	// SpinUpSamples is how much is buffered before the driver starts.
	SpinUpSamples int `yaml:"spinup_samples"`

	MaxPreFillUpdates int `yaml:"max_prefill_updates"`
}

type PlayerConfig struct {
	// PositionPeriod is the play time between TIME reports.
	PositionPeriod time.Duration `yaml:"position_period"`

	// LoopPeriod is the pause between two player updates.
	LoopPeriod time.Duration `yaml:"loop_period"`
}

type MetricsConfig struct {
	// ListenAddr serves /metrics when set (e.g., ":9090").
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used for every field a file leaves
// out.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Output: OutputConfig{
			Driver:          DriverPortAudio,
			FramesPerBuffer: 1024,
		},
		Engine: EngineConfig{
			RingPower:         16,
			SpinUpSamples:     2 * 16384,
			MaxPreFillUpdates: 4096,
		},
		Player: PlayerConfig{
			PositionPeriod: 500 * time.Millisecond,
			LoopPeriod:     time.Millisecond,
		},
	}
}
