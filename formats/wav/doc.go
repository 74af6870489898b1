// SPDX-License-Identifier: EPL-2.0

// Package wav decodes 16-bit PCM WAV files.
//
// The decoder walks the RIFF chunk list, reads the "fmt " chunk and stops at
// the start of "data". Any other chunk (LIST, fact, cue and so on) is
// skipped. Samples are returned as float32 in [-1.0, 1.0].
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//
// # Seeking
//
// When the input is an io.ReadSeeker the source implements audio.Seeker and
// seeks by byte offset into the data chunk:
//
//	err := source.(audio.Seeker).SeekSamples(44100) // one second at 44.1kHz
//
// A plain io.Reader can still be decoded, but SeekSamples then returns
// audio.ErrNotSeekable.
//
// # Errors
//
//   - ErrNotWavFile: missing RIFF/WAVE signature
//   - ErrOnlyPCM16bitSupported: compressed, float or non 16-bit data
//   - ErrUnsupportedWavLayout: malformed fmt chunk or data before fmt
//   - ErrUnsupportedWavChunks: no data chunk was found
package wav
