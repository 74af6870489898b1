// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audplay/audio"
)

const (
	formatPCM       = 1
	bitsPerSample   = 16
	bytesPerValue   = bitsPerSample / 8
	streamingSize   = 0xFFFFFFFF
	defaultReadSize = 4096
)

type wavSource struct {
	r  io.Reader
	rs io.ReadSeeker // nil when the input cannot seek

	sampleRate int
	channels   int
	blockAlign int

	dataStart int64
	dataSize  int64
	remaining int64

	buf []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return defaultReadSize }
func (s *wavSource) Close() error    { return nil }

// ReadSamples reads whole frames only; a trailing partial frame in the data
// chunk is dropped.
func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}

	want := int64(len(dst)/s.channels) * int64(s.blockAlign)
	want = min(want, s.remaining)
	if want == 0 {
		return 0, nil
	}

	if int64(len(s.buf)) < want {
		s.buf = make([]byte, want)
	}

	n, err := io.ReadFull(s.r, s.buf[:want])
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.remaining = 0
	case err != nil:
		return 0, fmt.Errorf("read data chunk: %w", err)
	default:
		s.remaining -= int64(n)
	}

	n -= n % s.blockAlign
	values := n / bytesPerValue
	for i := range values {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	if values == 0 {
		return 0, io.EOF
	}
	return values, nil
}

// SeekSamples positions the reader at frame. Seeking past the end of the
// data chunk leaves the source exhausted.
func (s *wavSource) SeekSamples(frame int64) error {
	if s.rs == nil {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		return audio.ErrNegativeSeek
	}

	off := s.dataSize
	if frame <= s.dataSize/int64(s.blockAlign) {
		off = frame * int64(s.blockAlign)
	}

	if _, err := s.rs.Seek(s.dataStart+off, io.SeekStart); err != nil {
		return fmt.Errorf("seek to frame %d: %w", frame, err)
	}
	s.remaining = s.dataSize - off

	return nil
}

type Decoder struct{}

// Decode parses the RIFF/WAVE header up to the start of the data chunk.
// Chunks other than "fmt " and "data" are skipped. Seeking is available
// when r also implements io.Seeker.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	riff := make([]byte, 12)
	if _, err := io.ReadFull(r, riff); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}

	if !bytes.Equal(riff[:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	src := &wavSource{r: r}
	haveFmt := false
	hdr := make([]byte, 8)

	for {
		if _, err := io.ReadFull(r, hdr); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrUnsupportedWavChunks
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}

		id := string(hdr[:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			if err := src.parseFormat(r, size); err != nil {
				return nil, err
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWavLayout
			}
			if err := src.startData(r, size); err != nil {
				return nil, err
			}
			return src, nil

		default:
			if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
				return nil, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
	}
}

func (s *wavSource) parseFormat(r io.Reader, size int64) error {
	if size < 16 {
		return ErrUnsupportedWavLayout
	}

	body := make([]byte, size+size%2)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("read fmt chunk: %w", err)
	}

	audioFormat := binary.LittleEndian.Uint16(body[0:2])
	channels := int(binary.LittleEndian.Uint16(body[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(body[4:8]))
	blockAlign := int(binary.LittleEndian.Uint16(body[12:14]))
	bits := int(binary.LittleEndian.Uint16(body[14:16]))

	if audioFormat != formatPCM || bits != bitsPerSample {
		return ErrOnlyPCM16bitSupported
	}
	if channels == 0 || sampleRate == 0 || blockAlign != channels*bytesPerValue {
		return ErrUnsupportedWavLayout
	}

	s.channels = channels
	s.sampleRate = sampleRate
	s.blockAlign = blockAlign

	return nil
}

func (s *wavSource) startData(r io.Reader, size int64) error {
	if size == streamingSize {
		size = math.MaxInt64
	}
	s.dataSize = size
	s.remaining = size

	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return nil
	}

	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		// Pipes and similar report ReadSeeker but cannot seek.
		return nil
	}
	s.rs = rs
	s.dataStart = pos

	return nil
}
