// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes 16-bit PCM AIFF files using github.com/go-audio/aiff.
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//
// go-audio needs an io.ReadSeeker. Other readers are buffered in memory
// before decoding.
//
// # Seeking
//
// go-audio cannot jump to a sample frame, so SeekSamples rewinds the input,
// re-reads the header and discards frames up to the target. The cost grows
// with the target position.
//
// # Errors
//
//   - ErrNotAiffFile: the FORM/AIFF header is missing or invalid
//   - ErrOnlyPCM16bitSupported: bit depth other than 16
//   - ErrUnsupportedAiffLayout: no usable COMM chunk
package aiff
