// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audplay/audio"
)

// go-mp3 always produces interleaved stereo 16-bit little-endian PCM.
const (
	channels   = 2
	frameBytes = channels * 2
)

// mp3Reader is the part of gomp3.Decoder the source uses, so tests can
// replace it.
type mp3Reader interface {
	io.ReadSeeker
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	seekable   bool
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // values, not bytes

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := (len(dst) / channels) * frameBytes
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.dec, s.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("mp3 read: %w", err)
	}

	n -= n % frameBytes
	values := n / 2
	for i := range values {
		val := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(val) / 32768.0
	}

	return values, err
}

// SeekSamples moves to frame. Positions past the end clamp to the end.
func (s *source) SeekSamples(frame int64) error {
	if !s.seekable {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		return audio.ErrNegativeSeek
	}

	off := frame * frameBytes
	if l := s.dec.Length(); l >= 0 && off > l {
		off = l - l%frameBytes
	}

	if _, err := s.dec.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("mp3 seek to frame %d: %w", frame, err)
	}
	return nil
}

type Decoder struct{}

// Decode prepares an MP3 stream. Seeking needs r to implement io.Seeker.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}

	_, seekable := r.(io.Seeker)

	return &source{
		dec:        dec,
		seekable:   seekable,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
