// SPDX-License-Identifier: EPL-2.0

package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ik5/audplay/internal/config"
)

func TestLoadFromReader_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	def := config.Default()
	if *cfg != *def {
		t.Errorf("empty config = %+v, want defaults %+v", *cfg, *def)
	}
}

func TestLoadFromReader_Overrides(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: debug
output:
  driver: wav
  wav_path: /tmp/out.wav
  frames_per_buffer: 256
engine:
  ring_power: 12
player:
  position_period: 250ms
metrics:
  listen_addr: ":9090"
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.LogLevel.Level() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel.Level())
	}
	if cfg.Output.Driver != config.DriverWAV || cfg.Output.WAVPath != "/tmp/out.wav" || cfg.Output.FramesPerBuffer != 256 {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Engine.RingPower != 12 {
		t.Errorf("ring_power = %d, want 12", cfg.Engine.RingPower)
	}
	// Fields left out keep their defaults.
	if cfg.Engine.SpinUpSamples != config.Default().Engine.SpinUpSamples {
		t.Errorf("spinup_samples = %d, want default", cfg.Engine.SpinUpSamples)
	}
	if cfg.Player.PositionPeriod != 250*time.Millisecond {
		t.Errorf("position_period = %s, want 250ms", cfg.Player.PositionPeriod)
	}
	if cfg.Player.LoopPeriod != time.Millisecond {
		t.Errorf("loop_period = %s, want 1ms", cfg.Player.LoopPeriod)
	}
	if cfg.Metrics.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q", cfg.Metrics.ListenAddr)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("output:\n  drvier: null\n"))
	if err == nil {
		t.Fatal("expected error for misspelled field, got nil")
	}
	if !strings.Contains(err.Error(), "drvier") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want []string
	}{
		{
			name: "bad log level",
			yaml: "log_level: chatty\n",
			want: []string{"log_level"},
		},
		{
			name: "bad driver",
			yaml: "output:\n  driver: alsa\n",
			want: []string{"output.driver"},
		},
		{
			name: "wav without path",
			yaml: "output:\n  driver: wav\n",
			want: []string{"output.wav_path"},
		},
		{
			name: "null without buffer size",
			yaml: "output:\n  driver: \"null\"\n  frames_per_buffer: 0\n",
			want: []string{"output.frames_per_buffer"},
		},
		{
			name: "ring too large",
			yaml: "engine:\n  ring_power: 40\n",
			want: []string{"engine.ring_power"},
		},
		{
			name: "several at once",
			yaml: "engine:\n  spinup_samples: -1\n  max_prefill_updates: -2\nplayer:\n  loop_period: 0s\n  position_period: -1s\n",
			want: []string{"engine.spinup_samples", "engine.max_prefill_updates", "player.loop_period", "player.position_period"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error should mention %s, got: %v", w, err)
				}
			}
		})
	}
}

func TestValidate_PortAudioMayLeaveBufferSizeToDriver(t *testing.T) {
	t.Parallel()

	if _, err := config.LoadFromReader(strings.NewReader("output:\n  frames_per_buffer: 0\n")); err != nil {
		t.Errorf("LoadFromReader() error = %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audplay.yaml")
	if err := os.WriteFile(path, []byte("output:\n  driver: \"null\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Driver != config.DriverNull {
		t.Errorf("driver = %q, want null", cfg.Output.Driver)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
