// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Stats is a snapshot of the callback counters. Samples are interleaved
// frames.
type Stats struct {
	Callbacks        uint64
	DeliveredSamples uint64
	SilentSamples    uint64
	Underruns        uint64
	DriverUnderflows uint64
	Completions      uint64
}

// Engine plays one decoder through one driver.
//
// Update, Start, SeekTo and Close belong to the fill goroutine. Start,
// Stop, SeekTo and Close are serialised, so drivers never see concurrent
// control calls. Stop, IsStopped, CurrentPosition, Ended, Completed and Stats may be called
// from anywhere.
type Engine struct {
	dec    Decoder
	sh     *shared
	fill   *Filler
	out    *output
	stats  *counters
	driver Driver
	log    *slog.Logger

	mtx    sync.Mutex
	closed bool
}

// New wires dec and rb together and opens a driver running the engine's
// callback. The driver starts out stopped.
func New(dec Decoder, rb RingBuffer, open Opener, cfg Config) (*Engine, error) {
	if dec == nil || rb == nil || open == nil {
		return nil, ErrNilDependency
	}

	sampleSize := dec.BytesForSamples(1)
	if sampleSize <= 0 || rb.ElemSize() != sampleSize {
		return nil, fmt.Errorf("%w: ring %d bytes, decoder %d bytes", ErrElemSize, rb.ElemSize(), sampleSize)
	}

	cfg = cfg.withDefaults(rb.Capacity())

	sh := &shared{rb: rb}
	stats := &counters{}
	e := &Engine{
		dec:   dec,
		sh:    sh,
		fill:  newFiller(dec, sh, cfg),
		out:   &output{sh: sh, sampleSize: sampleSize, stats: stats},
		stats: stats,
		log:   cfg.Logger,
	}

	driver, err := open(e.out.callback)
	if err != nil {
		return nil, fmt.Errorf("open driver: %w", err)
	}
	e.driver = driver

	return e, nil
}

// Start pre-fills the ring buffer and starts the driver. Starting a running
// engine does nothing.
func (e *Engine) Start(ctx context.Context) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return ErrClosed
	}
	if !e.driver.IsStopped() {
		return nil
	}

	return e.startLocked(ctx)
}

func (e *Engine) startLocked(ctx context.Context) error {
	if err := e.fill.PreFill(ctx); err != nil {
		return fmt.Errorf("prefill: %w", err)
	}

	e.out.completed.Store(false)
	if err := e.driver.Start(); err != nil {
		return fmt.Errorf("start driver: %w", err)
	}

	e.log.Debug("engine started", "position", e.CurrentPosition(), "buffered", e.fill.Buffered())
	return nil
}

// Stop halts the driver immediately. Buffered samples stay in the ring
// buffer and play on the next Start.
func (e *Engine) Stop() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.driver.IsStopped() {
		return nil
	}

	if err := e.driver.Stop(); err != nil {
		return fmt.Errorf("stop driver: %w", err)
	}

	e.log.Debug("engine stopped", "position", e.CurrentPosition())
	return nil
}

func (e *Engine) IsStopped() bool { return e.driver.IsStopped() }

// Update runs one fill step. See Filler.Update.
func (e *Engine) Update() (bool, error) {
	return e.fill.Update()
}

// PreFill fills the ring buffer up to the spin-up amount without touching
// the driver.
func (e *Engine) PreFill(ctx context.Context) error {
	return e.fill.PreFill(ctx)
}

// CurrentPosition is the play time of the next sample the callback will
// deliver.
func (e *Engine) CurrentPosition() time.Duration {
	return e.dec.TimeForSampleCount(e.sh.position.Load())
}

// Ended reports whether the decoder ran out of frames.
func (e *Engine) Ended() bool { return e.sh.ended.Load() }

// Completed reports whether the callback delivered the last sample of the
// stream since the last Start or SeekTo.
func (e *Engine) Completed() bool { return e.out.completed.Load() }

// SeekTo moves playback to t. A running driver is stopped for the seek,
// and restarted after the ring buffer was pre-filled from the new
// position.
func (e *Engine) SeekTo(ctx context.Context, t time.Duration) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return ErrClosed
	}

	running := !e.driver.IsStopped()
	if running {
		if err := e.driver.Stop(); err != nil {
			return fmt.Errorf("stop driver: %w", err)
		}
	}

	if err := e.fill.SeekTo(t); err != nil {
		if running {
			if startErr := e.driver.Start(); startErr != nil {
				return errors.Join(err, fmt.Errorf("restart driver: %w", startErr))
			}
		}
		return err
	}
	e.out.completed.Store(false)

	e.log.Debug("engine seeked", "to", t, "position", e.CurrentPosition(), "running", running)

	if running {
		return e.startLocked(ctx)
	}
	return nil
}

func (e *Engine) Stats() Stats {
	return Stats{
		Callbacks:        e.stats.callbacks.Load(),
		DeliveredSamples: e.stats.deliveredSamples.Load(),
		SilentSamples:    e.stats.silentSamples.Load(),
		Underruns:        e.stats.underruns.Load(),
		DriverUnderflows: e.stats.driverUnderflows.Load(),
		Completions:      e.stats.completions.Load(),
	}
}

// Close stops and releases the driver. The decoder belongs to the caller.
func (e *Engine) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var stopErr error
	if !e.driver.IsStopped() {
		stopErr = e.driver.Stop()
	}

	if s := e.Stats(); s.DriverUnderflows > 0 {
		e.log.Warn("driver reported output underflows", "count", s.DriverUnderflows)
	}

	return errors.Join(stopErr, e.driver.Close())
}
