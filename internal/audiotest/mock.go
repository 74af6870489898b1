// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds test doubles shared by the audplay packages.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// MockSource generates audio for tests. It satisfies audio.Source and
// audio.Seeker without importing the audio package.
type MockSource struct {
	sampleRate   int
	channels     int
	bufSize      int
	totalSamples int // per channel
	generated    int // per channel
	waveform     func(sample int, channel int) float32

	// FailAfter makes ReadSamples return Err once that many frames were
	// produced. Zero disables the failure.
	FailAfter int
	Err       error

	// Stall makes ReadSamples return (0, nil) forever.
	Stall bool

	// SeekErr is returned by every SeekSamples call when set.
	SeekErr error

	Closed bool
	Seeks  []int64
}

// NewMockSource creates a source producing totalSamples frames, each value
// computed by waveform from its frame index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		bufSize:      4096,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// NewRampSource yields frame index i as the value i/32767 on every channel,
// so the 16-bit PCM of frame i decodes back to i.
func NewRampSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		return float32(sample%32768) / 32767
	})
}

// WithBufSize overrides the value reported by BufSize.
func (m *MockSource) WithBufSize(n int) *MockSource {
	m.bufSize = n
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return m.bufSize }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Position returns the next frame index ReadSamples will produce.
func (m *MockSource) Position() int { return m.generated }

// Reset rewinds to the first frame.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) SeekSamples(frame int64) error {
	if m.SeekErr != nil {
		return m.SeekErr
	}
	if frame < 0 {
		return errors.New("audiotest: negative seek")
	}
	m.Seeks = append(m.Seeks, frame)
	m.generated = min(int(frame), m.totalSamples)
	return nil
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.Stall {
		return 0, nil
	}
	if m.FailAfter > 0 && m.generated >= m.FailAfter {
		return 0, m.Err
	}
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)
	if m.FailAfter > 0 {
		framesToWrite = min(framesToWrite, m.FailAfter-m.generated)
	}

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	written := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return written, io.EOF
	}

	return written, nil
}
