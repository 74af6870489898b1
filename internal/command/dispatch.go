// SPDX-License-Identifier: EPL-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/player"
)

// Player is the set of player operations reachable from the protocol.
type Player interface {
	Load(path string) error
	Eject() error
	Play(ctx context.Context) error
	Stop() error
	Seek(ctx context.Context, at string) error
	Quit() error
}

type handler struct {
	args int
	run  func(ctx context.Context, p Player, args []string) error
}

var handlers = map[string]handler{
	"play": {0, func(ctx context.Context, p Player, _ []string) error { return p.Play(ctx) }},
	"stop": {0, func(_ context.Context, p Player, _ []string) error { return p.Stop() }},
	"ejct": {0, func(_ context.Context, p Player, _ []string) error { return p.Eject() }},
	"quit": {0, func(_ context.Context, p Player, _ []string) error { return p.Quit() }},
	"load": {1, func(_ context.Context, p Player, args []string) error { return p.Load(args[0]) }},
	"seek": {1, func(ctx context.Context, p Player, args []string) error { return p.Seek(ctx, args[0]) }},
}

// Dispatcher runs protocol lines against a player.
type Dispatcher struct {
	p   Player
	log *slog.Logger
}

func NewDispatcher(p Player, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{p: p, log: log}
}

// Run executes line and returns the response to send back.
func (d *Dispatcher) Run(ctx context.Context, line string) Response {
	err := d.run(ctx, line)
	if err == nil {
		return Response{Code: Okay, Args: []string{line}}
	}

	code := Classify(err)
	switch code {
	case Fail:
		d.log.Warn("command failed", "line", line, "error", err)
	case Oops:
		d.log.Error("command hit an internal error", "line", line, "error", err)
	default:
		d.log.Debug("rejected command", "line", line, "error", err)
	}

	return Response{Code: code, Args: []string{err.Error()}}
}

func (d *Dispatcher) run(ctx context.Context, line string) error {
	words, err := Split(line)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return ErrEmpty
	}

	h, ok := handlers[words[0]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, words[0])
	}
	if len(words)-1 != h.args {
		return fmt.Errorf("%w: %s takes %d", ErrArgCount, words[0], h.args)
	}

	return h.run(ctx, d.p, words[1:])
}

// Classify maps an error to its response code.
func Classify(err error) Code {
	switch {
	case err == nil:
		return Okay
	case errors.Is(err, ErrEmpty),
		errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrArgCount),
		errors.Is(err, ErrUnterminatedQuote),
		errors.Is(err, ErrTrailingEscape),
		errors.Is(err, player.ErrBadState),
		errors.Is(err, player.ErrBadSeekTime),
		errors.Is(err, player.ErrEmptyPath):
		return What
	case errors.Is(err, engine.ErrInternalConsistency),
		errors.Is(err, engine.ErrClosed):
		return Oops
	default:
		return Fail
	}
}
