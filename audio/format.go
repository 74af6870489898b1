// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// BytesPerValue is the width of one channel value in the PCM produced by
// PCMDecoder (signed 16-bit little-endian).
const BytesPerValue = 2

// Format describes the fixed PCM layout handed to the playback engine.
type Format struct {
	SampleRate int
	Channels   int
}

// FrameSize is the number of bytes in one interleaved sample frame.
func (f Format) FrameSize() int { return f.Channels * BytesPerValue }

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/s16le", f.SampleRate, f.Channels)
}
