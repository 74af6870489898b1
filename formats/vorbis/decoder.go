// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the source uses, so tests can
// replace it.
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of float32 values, always whole frames.
	Read([]float32) (int, error)
	SetPosition(int64) error
	Length() int64
}

type source struct {
	dec        oggReader
	seekable   bool
	sampleRate int
	channels   int
	frameBuf   []float32
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.frameBuf) }

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := (len(dst) / s.channels) * s.channels
	if want == 0 {
		return 0, nil
	}

	if cap(s.frameBuf) < want {
		s.frameBuf = make([]float32, want)
	}
	s.frameBuf = s.frameBuf[:want]

	n, err := s.dec.Read(s.frameBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("vorbis read: %w", err)
	}

	n -= n % s.channels
	copy(dst, s.frameBuf[:n])

	return n, err
}

// SeekSamples moves to frame. Positions past the end clamp to the end.
func (s *source) SeekSamples(frame int64) error {
	if !s.seekable {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		return audio.ErrNegativeSeek
	}

	if l := s.dec.Length(); l > 0 && frame > l {
		frame = l
	}

	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("vorbis seek to frame %d: %w", frame, err)
	}
	return nil
}

type Decoder struct{}

// Decode prepares an Ogg Vorbis stream. Seeking needs r to implement
// io.ReadSeeker.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis decode: %w", err)
	}

	_, seekable := r.(io.ReadSeeker)

	return &source{
		dec:        dec,
		seekable:   seekable,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		frameBuf:   make([]float32, 4096),
	}, nil
}
