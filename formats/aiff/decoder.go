// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audplay/audio"
)

// aiffReader is the part of aiff.Decoder the source uses, so tests can
// replace it.
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source.
type source struct {
	dec        aiffReader
	sampleRate int
	channels   int
	intBuf     *goaudio.IntBuffer
	eof        bool

	// open rewinds the input and returns a decoder positioned at the
	// first frame. go-audio has no frame seek, so SeekSamples re-reads.
	open func() (aiffReader, error)
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

// read fills up to n values of s.intBuf.
func (s *source) read(n int) (int, error) {
	if s.intBuf == nil || cap(s.intBuf.Data) < n {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, n),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:n]
	}

	got, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("aiff read: %w", err)
	}
	if got < n || errors.Is(err, io.EOF) {
		s.eof = true
	}

	return got - got%s.channels, nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	want := (len(dst) / s.channels) * s.channels
	if want == 0 {
		return 0, nil
	}

	n, err := s.read(want)
	if err != nil {
		return 0, err
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) / 32768.0
	}

	if s.eof {
		return n, io.EOF
	}
	return n, nil
}

// SeekSamples restarts decoding and discards frame frames.
func (s *source) SeekSamples(frame int64) error {
	if s.open == nil {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		return audio.ErrNegativeSeek
	}

	dec, err := s.open()
	if err != nil {
		return fmt.Errorf("aiff seek to frame %d: %w", frame, err)
	}
	s.dec = dec
	s.eof = false

	skip := frame * int64(s.channels)
	for skip > 0 && !s.eof {
		n, err := s.read(int(min(skip, 4096*int64(s.channels))))
		if err != nil {
			return fmt.Errorf("aiff seek to frame %d: %w", frame, err)
		}
		skip -= int64(n)
	}

	return nil
}

type Decoder struct{}

// Decode reads the AIFF header. go-audio needs an io.ReadSeeker, so other
// readers are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("aiff start offset: %w", err)
	}

	dec, err := openAt(rs, start)
	if err != nil {
		return nil, err
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		open: func() (aiffReader, error) {
			return openAt(rs, start)
		},
	}, nil
}

func openAt(rs io.ReadSeeker, start int64) (*aiff.Decoder, error) {
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("aiff rewind: %w", err)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()
	if dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	return dec, nil
}
