// SPDX-License-Identifier: EPL-2.0

// Command audplay plays audio files under the control of line commands read
// from standard input.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/ik5/audplay/internal/app"
	"github.com/ik5/audplay/internal/config"
	"github.com/ik5/audplay/internal/observe"
	"github.com/ik5/audplay/output/portaudio"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults apply when empty)")
	driver := flag.String("driver", "", "output driver: portaudio, null or wav (overrides the config)")
	device := flag.String("device", "", "PortAudio device index or name (overrides the config)")
	wavPath := flag.String("wav", "", "file written by the wav driver (overrides the config)")
	listDevices := flag.Bool("list-devices", false, "list PortAudio output devices and exit")
	flag.Parse()

	if *listDevices {
		return printDevices()
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audplay: %v\n", err)
		return 1
	}
	if *driver != "" {
		cfg.Output.Driver = config.Driver(*driver)
	}
	if *device != "" {
		cfg.Output.Device = *device
	}
	if *wavPath != "" {
		cfg.Output.WAVPath = *wavPath
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "audplay: %v\n", err)
		return 1
	}

	// Standard output carries the protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))
	slog.SetDefault(logger)

	slog.Info("audplay starting",
		"version", version,
		"config", *configPath,
		"driver", cfg.Output.Driver,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []app.Option
	opts = append(opts, app.WithLogger(logger))

	if cfg.Metrics.ListenAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			slog.Error("failed to initialise metrics", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("metrics shutdown error", "err", err)
			}
		}()

		metrics, err := observe.NewMetrics(otel.GetMeterProvider())
		if err != nil {
			slog.Error("failed to create metrics", "err", err)
			return 1
		}
		opts = append(opts, app.WithMetrics(metrics))
	}

	application, err := app.New(cfg, os.Stdin, os.Stdout, opts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Warn("close error", "err", err)
		}
	}()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("audplay stopped")
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found", path)
	}
	return cfg, err
}

func printDevices() int {
	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "audplay: %v\n", err)
		return 1
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "audplay: %v\n", err)
		return 1
	}

	for _, d := range devices {
		fmt.Println(d)
	}
	return 0
}
