// SPDX-License-Identifier: EPL-2.0

// Package app wires configuration, decoders, output driver, player and
// command protocol into a runnable audplay process.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/internal/command"
	"github.com/ik5/audplay/internal/config"
	"github.com/ik5/audplay/internal/observe"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/output/portaudio"
	"github.com/ik5/audplay/player"
)

const (
	helloMessage   = "audplay ready"
	goodbyeMessage = "audplay exiting"
)

// App owns the player and runs the command loop.
type App struct {
	cfg *config.Config
	log *slog.Logger

	in  io.Reader
	out *command.Writer

	player   *player.Player
	dispatch *command.Dispatcher

	metrics  *observe.Metrics
	statsReg metric.Registration

	// portAudio is set when New initialised PortAudio.
	portAudio bool
}

type Option func(*App)

func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithMetrics records player and engine metrics into m.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New builds an App reading commands from in and writing responses to out.
func New(cfg *config.Config, in io.Reader, out io.Writer, opts ...Option) (*App, error) {
	a := &App{
		cfg: cfg,
		log: slog.Default(),
		in:  in,
		out: command.NewWriter(out),
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.Output.Driver == config.DriverPortAudio {
		if err := portaudio.Initialize(); err != nil {
			return nil, err
		}
		a.portAudio = true
	}

	loader := player.FileLoader{
		Registry:  audplay.DefaultRegistry(),
		Output:    a.opener,
		RingPower: cfg.Engine.RingPower,
		Engine: engine.Config{
			SpinUp:            cfg.Engine.SpinUpSamples,
			MaxPreFillUpdates: cfg.Engine.MaxPreFillUpdates,
			Logger:            a.log,
		},
	}

	popts := []player.Option{
		player.WithLogger(a.log),
		player.WithStateListener(func(from, to player.State) {
			a.respond(command.StateResponse(from, to))
		}),
		player.WithPositionListener(func(pos time.Duration) {
			a.respond(command.TimeResponse(pos))
		}, cfg.Player.PositionPeriod),
	}
	if a.metrics != nil {
		popts = append(popts, player.WithObserver(a.metrics))
	}
	a.player = player.New(loader, popts...)
	a.dispatch = command.NewDispatcher(a.player, a.log)

	if a.metrics != nil {
		reg, err := a.metrics.WatchStats(a.player.Stats)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("watch engine stats: %w", err)
		}
		a.statsReg = reg
	}

	return a, nil
}

// opener picks the output driver for a decoded file.
func (a *App) opener(f audio.Format) engine.Opener {
	out := a.cfg.Output

	switch out.Driver {
	case config.DriverNull:
		return output.Null(f, out.FramesPerBuffer, a.log)
	case config.DriverWAV:
		return output.WAVFile(out.WAVPath, f, out.FramesPerBuffer, a.log)
	default:
		return portaudio.Open(portaudio.Config{
			Format:          f,
			Device:          out.Device,
			FramesPerBuffer: out.FramesPerBuffer,
			Logger:          a.log,
		})
	}
}

func (a *App) respond(r command.Response) {
	if err := a.out.Write(r); err != nil {
		a.log.Warn("writing response", "code", r.Code, "error", err)
	}
}

// Player exposes the player, mostly for tests.
func (a *App) Player() *player.Player { return a.player }

// Run serves commands until quit, the end of the input or ctx is done.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.respond(command.Response{Code: command.Hello, Args: []string{helloMessage}})

	// The reader stays outside the group: a blocked read cannot be
	// cancelled and must not hold up shutdown.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go a.readCommands(runCtx, lines, readErr)

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return a.loop(gctx, lines)
	})

	if addr := a.cfg.Metrics.ListenAddr; addr != "" {
		g.Go(func() error {
			return observe.Serve(gctx, addr, a.log)
		})
	}

	err := g.Wait()

	if a.player.State() != player.Quitting {
		if qerr := a.player.Quit(); qerr != nil {
			a.log.Warn("quitting player", "error", qerr)
		}
	}

	select {
	case rerr := <-readErr:
		err = errors.Join(err, rerr)
	default:
	}

	a.respond(command.Response{Code: command.Goodbye, Args: []string{goodbyeMessage}})
	return err
}

func (a *App) readCommands(ctx context.Context, lines chan<- string, errc chan<- error) {
	defer close(lines)

	sc := bufio.NewScanner(a.in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		errc <- fmt.Errorf("read commands: %w", err)
	}
}

func (a *App) loop(ctx context.Context, lines <-chan string) error {
	ticker := time.NewTicker(a.cfg.Player.LoopPeriod)
	defer ticker.Stop()

	for a.player.State() != player.Quitting {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				a.log.Debug("end of command input")
				return a.player.Quit()
			}
			a.respond(a.dispatch.Run(ctx, line))

		case <-ticker.C:
			if err := a.player.Update(); err != nil {
				a.log.Error("player update failed", "error", err)
				a.respond(command.Response{Code: command.Classify(err), Args: []string{err.Error()}})
			}
		}
	}

	return nil
}

// Close releases the player and output system.
func (a *App) Close() error {
	var errs []error

	if a.player != nil && a.player.State() != player.Quitting {
		errs = append(errs, a.player.Quit())
	}
	if a.statsReg != nil {
		errs = append(errs, a.statsReg.Unregister())
	}
	if a.portAudio {
		errs = append(errs, portaudio.Terminate())
		a.portAudio = false
	}

	return errors.Join(errs...)
}
