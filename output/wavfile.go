// SPDX-License-Identifier: EPL-2.0

package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
)

const wavFormatPCM = 1

// wavSink records every buffer into a 16-bit PCM WAV file.
type wavSink struct {
	f   *os.File
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

func newWAVSink(path string, f audio.Format) (*wavSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav output: %w", err)
	}

	return &wavSink{
		f:   file,
		enc: wav.NewEncoder(file, f.SampleRate, 16, f.Channels, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

func (s *wavSink) write(b []byte) error {
	n := len(b) / 2
	if cap(s.buf.Data) < n {
		s.buf.Data = make([]int, n)
	}
	s.buf.Data = s.buf.Data[:n]

	for i := range n {
		s.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(b[2*i:])))
	}

	return s.enc.Write(s.buf)
}

func (s *wavSink) close() error {
	return errors.Join(s.enc.Close(), s.f.Close())
}

// WAVFile returns an opener for a driver that records the callback output
// to path, paced like a real device. The file is finalized on Close.
func WAVFile(path string, f audio.Format, framesPerBuffer int, log *slog.Logger) engine.Opener {
	return func(cb engine.Callback) (engine.Driver, error) {
		if framesPerBuffer <= 0 {
			return nil, ErrInvalidBuffer
		}

		s, err := newWAVSink(path, f)
		if err != nil {
			return nil, err
		}

		p, err := newPump(cb, f, framesPerBuffer, s, log)
		if err != nil {
			s.close()
			return nil, err
		}

		return p, nil
	}
}
