// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio using github.com/jfreymuth/oggvorbis.
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//
// Samples come out as interleaved float32 values in [-1.0, 1.0], with the
// channel count and sample rate of the stream.
//
// # Seeking
//
// When the input is an io.ReadSeeker the source implements audio.Seeker by
// way of oggvorbis' granule position search. Frames past the end of the
// stream clamp to the end. Seeking a plain io.Reader returns
// audio.ErrNotSeekable.
package vorbis
