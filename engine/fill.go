// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Filler moves decoded frames into the ring buffer. All of its methods run
// on the fill goroutine.
type Filler struct {
	dec Decoder
	sh  *shared
	log *slog.Logger

	frame  []byte
	cursor int

	// broken latches a short ring buffer write. The frame cursor no longer
	// matches what was queued, so no further writes are safe.
	broken error

	spinUp     int
	maxUpdates int
}

func newFiller(dec Decoder, sh *shared, cfg Config) *Filler {
	return &Filler{
		dec:        dec,
		sh:         sh,
		log:        cfg.Logger,
		spinUp:     cfg.SpinUp,
		maxUpdates: cfg.MaxPreFillUpdates,
	}
}

// Update writes as much of the current frame as fits, decoding a new frame
// first if the previous one was used up. It reports false once the decoder
// is exhausted.
func (f *Filler) Update() (bool, error) {
	if f.broken != nil {
		return false, f.broken
	}

	if f.cursor >= len(f.frame) {
		frame, err := f.dec.Decode()
		if err != nil {
			return false, fmt.Errorf("decode: %w", err)
		}
		if len(frame) == 0 {
			f.reset()
			f.sh.ended.Store(true)
			return false, nil
		}
		f.frame, f.cursor = frame, 0
	}

	remaining := f.dec.SamplesForBytes(len(f.frame) - f.cursor)
	count := min(remaining, f.sh.rb.WriteCapacity())

	if count > 0 {
		size := f.dec.BytesForSamples(count)
		written := f.sh.rb.Write(f.frame[f.cursor:f.cursor+size], count)
		if written != count {
			f.broken = fmt.Errorf("%w: ring buffer took %d of %d samples", ErrInternalConsistency, written, count)
			return false, f.broken
		}
		f.cursor += size
	}

	if left := len(f.frame) - f.cursor; left > 0 && f.dec.SamplesForBytes(left) == 0 {
		f.log.Debug("dropping partial sample at end of frame", "bytes", left)
		f.reset()
	}

	return true, nil
}

// Buffered returns the number of samples waiting in the ring buffer.
func (f *Filler) Buffered() int {
	return f.sh.rb.Capacity() - f.sh.rb.WriteCapacity()
}

// PreFill calls Update until the stream is exhausted, the ring buffer is
// full or holds the spin-up amount. It gives up early after the configured
// number of updates or when ctx is done.
func (f *Filler) PreFill(ctx context.Context) error {
	if f.broken != nil {
		return f.broken
	}

	start := time.Now()
	updates := 0

	for ; updates < f.maxUpdates; updates++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.sh.rb.WriteCapacity() == 0 || f.Buffered() >= f.spinUp {
			break
		}

		more, err := f.Update()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	f.log.Debug("prefilled ring buffer",
		"samples", f.Buffered(),
		"updates", updates,
		"ended", f.sh.ended.Load(),
		"took", time.Since(start))

	return nil
}

// SeekTo moves the decoder to t and discards everything buffered. The
// callback must not be running. A failed decoder seek leaves the frame and
// the ring buffer as they were.
func (f *Filler) SeekTo(t time.Duration) error {
	if f.broken != nil {
		return f.broken
	}
	if err := f.dec.SeekTo(t); err != nil {
		return err
	}

	f.sh.position.Store(f.dec.SampleCountForTime(t))
	f.reset()
	f.sh.ended.Store(false)
	f.sh.rb.Flush()

	return nil
}

func (f *Filler) reset() {
	f.frame = nil
	f.cursor = 0
}
