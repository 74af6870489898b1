// SPDX-License-Identifier: EPL-2.0

package output

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
)

// Manual is a driver whose callback only runs inside Pull.
type Manual struct {
	cb   engine.Callback
	size int
	rate int

	mtx     sync.Mutex
	running atomic.Bool
	closed  bool
	clock   time.Duration
	buf     []byte
}

// NewManual returns an opener that stores the created driver in *dst.
func NewManual(f audio.Format, dst **Manual) engine.Opener {
	return func(cb engine.Callback) (engine.Driver, error) {
		m := &Manual{cb: cb, size: f.FrameSize(), rate: f.SampleRate}
		*dst = m
		return m, nil
	}
}

func (m *Manual) Start() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.running.Store(true)
	return nil
}

// Stop waits for a Pull in progress to return.
func (m *Manual) Stop() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.running.Store(false)
	return nil
}

func (m *Manual) IsStopped() bool { return !m.running.Load() }

func (m *Manual) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.running.Store(false)
	m.closed = true
	return nil
}

// Pull runs the callback for frames samples if the driver is running. It
// returns the buffer, valid until the next Pull, and false when stopped.
// The buffer starts zeroed, so a tail left by Complete reads as silence.
func (m *Manual) Pull(frames int) ([]byte, engine.Result, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if !m.running.Load() {
		return nil, engine.Continue, false
	}

	n := frames * m.size
	if cap(m.buf) < n {
		m.buf = make([]byte, n)
	}
	m.buf = m.buf[:n]
	clear(m.buf)

	res := m.cb(m.buf, frames, engine.TimeInfo{CurrentTime: m.clock}, 0)
	if m.rate > 0 {
		m.clock += time.Duration(frames) * time.Second / time.Duration(m.rate)
	}
	if res == engine.Complete {
		m.running.Store(false)
	}

	return m.buf, res, true
}
