// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
)

// sink receives every buffer the callback produced. The buffer is reused.
type sink interface {
	write(buf []byte) error
	close() error
}

type discard struct{}

func (discard) write([]byte) error { return nil }
func (discard) close() error       { return nil }

// pump calls the engine callback on a wall clock schedule.
type pump struct {
	cb     engine.Callback
	sink   sink
	frames int
	size   int
	period time.Duration
	log    *slog.Logger

	mtx     sync.Mutex
	quit    chan struct{}
	done    chan struct{}
	closed  bool
	running atomic.Bool

	errMtx  sync.Mutex
	sinkErr error
}

func newPump(cb engine.Callback, f audio.Format, framesPerBuffer int, s sink, log *slog.Logger) (*pump, error) {
	if framesPerBuffer <= 0 {
		return nil, ErrInvalidBuffer
	}
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return nil, fmt.Errorf("output: %w: %s", audio.ErrInvalidFormat, f)
	}
	if log == nil {
		log = slog.Default()
	}

	return &pump{
		cb:     cb,
		sink:   s,
		frames: framesPerBuffer,
		size:   f.FrameSize(),
		period: time.Duration(framesPerBuffer) * time.Second / time.Duration(f.SampleRate),
		log:    log,
	}, nil
}

func (p *pump) Start() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.running.Load() {
		return nil
	}
	if p.done != nil {
		<-p.done
	}

	p.quit = make(chan struct{})
	p.done = make(chan struct{})
	p.running.Store(true)

	go p.loop(p.quit, p.done)

	return nil
}

func (p *pump) loop(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer p.running.Store(false)

	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	buf := make([]byte, p.frames*p.size)
	var clock time.Duration

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}

		// Complete leaves the tail of the last buffer untouched; a device
		// plays it as silence.
		clear(buf)

		info := engine.TimeInfo{CurrentTime: clock, OutputDacTime: clock + p.period}
		res := p.cb(buf, p.frames, info, 0)
		clock += p.period

		if err := p.sink.write(buf); err != nil {
			p.log.Error("output sink failed", "error", err)
			p.errMtx.Lock()
			p.sinkErr = err
			p.errMtx.Unlock()
			return
		}

		if res == engine.Complete {
			return
		}
	}
}

// Stop halts the pump and waits for the callback to return.
func (p *pump) Stop() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.quit == nil {
		return nil
	}

	close(p.quit)
	<-p.done
	p.quit = nil

	return nil
}

func (p *pump) IsStopped() bool { return !p.running.Load() }

func (p *pump) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	p.errMtx.Lock()
	defer p.errMtx.Unlock()

	return errors.Join(p.sinkErr, p.sink.close())
}
