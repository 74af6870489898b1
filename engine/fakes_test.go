// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/audplay/ringbuffer"
)

const testRate = 1000 // one sample per millisecond

// fakeDecoder hands out prepared frames of 16-bit mono samples.
type fakeDecoder struct {
	frames [][]byte
	next   int
	err    error
	seeks  []time.Duration
}

// rampFrames splits samples [0, total) into frames of size samples each.
func rampFrames(total, size int) [][]byte {
	var out [][]byte
	for start := 0; start < total; start += size {
		n := min(size, total-start)
		f := make([]byte, 2*n)
		for i := range n {
			binary.LittleEndian.PutUint16(f[2*i:], uint16(start+i))
		}
		out = append(out, f)
	}
	return out
}

func (d *fakeDecoder) Decode() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.next >= len(d.frames) {
		return nil, nil
	}
	f := d.frames[d.next]
	d.next++
	return f, nil
}

func (d *fakeDecoder) SeekTo(t time.Duration) error {
	if t < 0 {
		return errors.New("negative seek")
	}
	d.seeks = append(d.seeks, t)

	// Frames are addressed by their first sample value.
	want := d.SampleCountForTime(t)
	d.next = len(d.frames)
	for i, f := range d.frames {
		if uint64(binary.LittleEndian.Uint16(f)) >= want {
			d.next = i
			break
		}
	}
	return nil
}

func (d *fakeDecoder) SampleCountForTime(t time.Duration) uint64 {
	return uint64(t) * testRate / uint64(time.Second)
}

func (d *fakeDecoder) TimeForSampleCount(n uint64) time.Duration {
	return time.Duration(n * uint64(time.Second) / testRate)
}

func (d *fakeDecoder) BytesForSamples(n int) int { return 2 * n }
func (d *fakeDecoder) SamplesForBytes(n int) int { return n / 2 }

// fakeDriver never calls back on its own; tests pull with it.
type fakeDriver struct {
	cb       Callback
	running  atomic.Bool
	starts   int
	stops    int
	closed   bool
	startErr error
}

func (d *fakeDriver) Start() error {
	if d.startErr != nil {
		return d.startErr
	}
	d.starts++
	d.running.Store(true)
	return nil
}

func (d *fakeDriver) Stop() error {
	d.stops++
	d.running.Store(false)
	return nil
}

func (d *fakeDriver) IsStopped() bool { return !d.running.Load() }

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

// pull runs one callback for frames samples into a buffer pre-set to 0xFF.
func (d *fakeDriver) pull(frames int) ([]byte, Result) {
	out := make([]byte, 2*frames)
	for i := range out {
		out[i] = 0xFF
	}
	res := d.cb(out, frames, TimeInfo{}, 0)
	if res == Complete {
		d.running.Store(false)
	}
	return out, res
}

func newTestEngine(t testing.TB, dec *fakeDecoder, power uint, cfg Config) (*Engine, *fakeDriver, *ringbuffer.SPSC) {
	t.Helper()

	rb, err := ringbuffer.New(power, 2)
	if err != nil {
		t.Fatalf("ringbuffer.New() error = %v", err)
	}

	drv := &fakeDriver{}
	eng, err := New(dec, rb, func(cb Callback) (Driver, error) {
		drv.cb = cb
		return drv, nil
	}, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return eng, drv, rb
}

func values(b []byte) []int {
	out := make([]int, len(b)/2)
	for i := range out {
		out[i] = int(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

// shortRing accepts one sample less than asked.
type shortRing struct {
	*ringbuffer.SPSC
}

func (r shortRing) Write(src []byte, count int) int {
	return r.SPSC.Write(src, max(count-1, 0))
}
