// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/engine"
)

// DefaultPositionPeriod is the play time between two position reports.
const DefaultPositionPeriod = 500 * time.Millisecond

type (
	StateListener    func(from, to State)
	PositionListener func(pos time.Duration)
)

// Observer is told about player events, typically to record metrics.
type Observer interface {
	Loaded(path string, err error)
	Started(prefill time.Duration)
	Seeked(to time.Duration)
	StateChanged(from, to State)
	UpdateFailed(err error)
}

type nopObserver struct{}

func (nopObserver) Loaded(string, error)      {}
func (nopObserver) Started(time.Duration)     {}
func (nopObserver) Seeked(time.Duration)      {}
func (nopObserver) StateChanged(State, State) {}
func (nopObserver) UpdateFailed(error)        {}

type Option func(*Player)

func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.log = l }
}

func WithObserver(o Observer) Option {
	return func(p *Player) { p.obs = o }
}

func WithStateListener(fn StateListener) Option {
	return func(p *Player) { p.onState = fn }
}

// WithPositionListener reports the play position whenever it moved by at
// least period since the last report, and right after every load or seek.
func WithPositionListener(fn PositionListener, period time.Duration) Option {
	return func(p *Player) {
		p.onPosition = fn
		p.positionPeriod = period
	}
}

type Player struct {
	loader Loader
	log    *slog.Logger
	obs    Observer

	state atomic.Int32
	eng   Engine

	onState        StateListener
	onPosition     PositionListener
	positionPeriod time.Duration
	positionLast   time.Duration
	positionStale  bool

	// statsMtx guards eng swaps against Stats callers.
	statsMtx sync.Mutex
	retired  engine.Stats
}

func New(loader Loader, opts ...Option) *Player {
	p := &Player{
		loader:         loader,
		log:            slog.Default(),
		obs:            nopObserver{},
		positionPeriod: DefaultPositionPeriod,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.state.Store(int32(Ejected))

	return p
}

func (p *Player) State() State { return State(p.state.Load()) }

func (p *Player) setState(s State) {
	old := State(p.state.Swap(int32(s)))
	p.obs.StateChanged(old, s)
	if p.onState != nil {
		p.onState(old, s)
	}
}

// Load replaces whatever is loaded with path and leaves it Stopped. If the
// file cannot be loaded the player ends up Ejected.
func (p *Player) Load(path string) error {
	if p.State() == Quitting {
		return ErrBadState
	}
	if path == "" {
		return ErrEmptyPath
	}

	var closeErr error
	if p.State().in(Stopped, Playing) {
		closeErr = p.eject()
	}

	eng, err := p.loader.Load(path)
	p.obs.Loaded(path, err)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if closeErr != nil {
		p.log.Warn("closing previous file", "error", closeErr)
	}

	p.statsMtx.Lock()
	p.eng = eng
	p.statsMtx.Unlock()

	p.positionStale = true
	p.log.Debug("loaded file", "path", path)
	p.setState(Stopped)

	return nil
}

// Eject closes the loaded file.
func (p *Player) Eject() error {
	if !p.State().in(Stopped, Playing) {
		return ErrBadState
	}
	return p.eject()
}

func (p *Player) eject() error {
	p.statsMtx.Lock()
	eng := p.eng
	p.eng = nil
	p.retired = addStats(p.retired, eng.Stats())
	p.statsMtx.Unlock()

	err := eng.Close()
	p.positionLast = 0
	p.setState(Ejected)

	if err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	return nil
}

// Play starts a stopped file. The engine pre-fills before audio starts.
func (p *Player) Play(ctx context.Context) error {
	if p.State() != Stopped {
		return ErrBadState
	}

	start := time.Now()
	if err := p.eng.Start(ctx); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	p.obs.Started(time.Since(start))
	p.setState(Playing)

	return nil
}

// Stop pauses playback. Buffered audio resumes on the next Play.
func (p *Player) Stop() error {
	if p.State() != Playing {
		return ErrBadState
	}

	if err := p.eng.Stop(); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	p.setState(Stopped)

	return nil
}

// Seek moves the loaded file to the time given in the ParseSeekTime
// syntax. A playing file keeps playing from there. If the engine could not
// resume after the seek the player drops to Stopped instead of treating
// the halted driver as the end of the file.
func (p *Player) Seek(ctx context.Context, at string) error {
	if !p.State().in(Stopped, Playing) {
		return ErrBadState
	}

	t, err := ParseSeekTime(at)
	if err != nil {
		return err
	}

	if err := p.eng.SeekTo(ctx, t); err != nil {
		if p.State() == Playing && p.eng.IsStopped() {
			p.setState(Stopped)
		}
		return fmt.Errorf("seek: %w", err)
	}
	p.obs.Seeked(t)
	p.positionStale = true

	return nil
}

// Quit ejects any loaded file and moves to Quitting. It is valid in every
// state.
func (p *Player) Quit() error {
	var err error
	if p.State().in(Stopped, Playing) {
		err = p.eject()
	}
	p.setState(Quitting)

	return err
}

// Update runs one step of the player loop. A playing file whose driver
// stopped after the last sample is ejected. A failing decoder ejects the
// file and returns the error.
func (p *Player) Update() error {
	if p.State() == Playing {
		if p.eng.IsStopped() {
			p.log.Debug("playback finished", "position", p.eng.CurrentPosition())
			return p.eject()
		}
		p.sendPosition()
	}

	if !p.State().in(Stopped, Playing) {
		return nil
	}

	if _, err := p.eng.Update(); err != nil {
		p.obs.UpdateFailed(err)
		if ejectErr := p.eject(); ejectErr != nil {
			p.log.Warn("ejecting after failure", "error", ejectErr)
		}
		return fmt.Errorf("update: %w", err)
	}

	return nil
}

func (p *Player) sendPosition() {
	if p.onPosition == nil {
		return
	}

	pos := p.eng.CurrentPosition()
	if !p.positionStale && pos-p.positionLast < p.positionPeriod {
		return
	}

	p.onPosition(pos)
	p.positionLast = pos
	p.positionStale = false
}

// Stats returns the engine counters summed over every file played so far.
func (p *Player) Stats() engine.Stats {
	p.statsMtx.Lock()
	defer p.statsMtx.Unlock()

	if p.eng == nil {
		return p.retired
	}
	return addStats(p.retired, p.eng.Stats())
}

func addStats(a, b engine.Stats) engine.Stats {
	return engine.Stats{
		Callbacks:        a.Callbacks + b.Callbacks,
		DeliveredSamples: a.DeliveredSamples + b.DeliveredSamples,
		SilentSamples:    a.SilentSamples + b.SilentSamples,
		Underruns:        a.Underruns + b.Underruns,
		DriverUnderflows: a.DriverUnderflows + b.DriverUnderflows,
		Completions:      a.Completions + b.Completions,
	}
}
