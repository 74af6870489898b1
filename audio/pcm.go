// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"time"

	"github.com/ik5/audplay/utils"
)

const (
	defaultBufSize = 4096
	maxStalls      = 64
)

// PCMDecoder turns a Source into successive frames of interleaved signed
// 16-bit little-endian PCM. A sample, as counted by the conversion methods,
// is one interleaved frame: Channels values of BytesPerValue bytes each.
//
// The slice returned by Decode is reused and stays valid until the next call
// to Decode or SeekTo.
type PCMDecoder struct {
	src    Source
	format Format

	floats []float32
	frame  []byte

	eof    bool
	stalls int
}

// NewPCMDecoder wraps src. The decoder owns src from here on and closes it
// in Close.
func NewPCMDecoder(src Source) (*PCMDecoder, error) {
	f := Format{SampleRate: src.SampleRate(), Channels: src.Channels()}
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}

	size := src.BufSize()
	if size <= 0 {
		size = defaultBufSize
	}
	size -= size % f.Channels
	if size == 0 {
		size = f.Channels
	}

	return &PCMDecoder{
		src:    src,
		format: f,
		floats: make([]float32, size),
		frame:  make([]byte, size*BytesPerValue),
	}, nil
}

func (d *PCMDecoder) Format() Format { return d.format }

// Decode returns the next block of PCM. An empty frame with a nil error means
// the source is exhausted; every later call returns an empty frame as well
// until SeekTo rewinds the stream.
func (d *PCMDecoder) Decode() ([]byte, error) {
	for !d.eof {
		n, err := d.src.ReadSamples(d.floats)
		n -= n % d.format.Channels

		switch {
		case errors.Is(err, io.EOF):
			d.eof = true
		case err != nil:
			return nil, fmt.Errorf("read samples: %w", err)
		}

		if n > 0 {
			d.stalls = 0
			return d.frame[:utils.PutPCM16LE(d.frame, d.floats[:n])], nil
		}

		if !d.eof {
			d.stalls++
			if d.stalls >= maxStalls {
				return nil, ErrSourceStalled
			}
		}
	}

	return d.frame[:0], nil
}

// SeekTo moves the source to the sample frame that contains t.
func (d *PCMDecoder) SeekTo(t time.Duration) error {
	if t < 0 {
		return ErrNegativeSeek
	}

	s, ok := d.src.(Seeker)
	if !ok {
		return ErrNotSeekable
	}

	frame := d.SampleCountForTime(t)
	if frame > math.MaxInt64 {
		return fmt.Errorf("seek to %s: %w", t, ErrInvalidFormat)
	}

	if err := s.SeekSamples(int64(frame)); err != nil {
		return fmt.Errorf("seek to %s: %w", t, err)
	}

	d.eof = false
	d.stalls = 0
	return nil
}

// SampleCountForTime returns the index of the sample frame playing at t,
// rounding down.
func (d *PCMDecoder) SampleCountForTime(t time.Duration) uint64 {
	if t <= 0 {
		return 0
	}

	hi, lo := bits.Mul64(uint64(t), uint64(d.format.SampleRate))
	q, _ := bits.Div64(hi, lo, uint64(time.Second))
	return q
}

// TimeForSampleCount returns the earliest instant that falls in sample frame
// n, so SampleCountForTime(TimeForSampleCount(n)) == n. The result saturates
// at the largest representable duration.
func (d *PCMDecoder) TimeForSampleCount(n uint64) time.Duration {
	rate := uint64(d.format.SampleRate)

	hi, lo := bits.Mul64(n, uint64(time.Second))
	if hi >= rate {
		return time.Duration(math.MaxInt64)
	}

	q, r := bits.Div64(hi, lo, rate)
	if q >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	if r != 0 {
		q++
	}
	return time.Duration(q)
}

func (d *PCMDecoder) BytesForSamples(n int) int { return n * d.format.FrameSize() }

func (d *PCMDecoder) SamplesForBytes(n int) int { return n / d.format.FrameSize() }

func (d *PCMDecoder) Close() error { return d.src.Close() }
