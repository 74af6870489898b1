// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 audio using github.com/hajimehoshi/go-mp3.
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//
// The source always reports two channels since go-mp3 upmixes mono streams
// to stereo. The sample rate follows the file.
//
// # Seeking
//
// The source implements audio.Seeker when the input is an io.Seeker (an
// *os.File, a *bytes.Reader). go-mp3 seeks by PCM byte offset, so a frame
// index maps to frame*4 bytes. Seeking a plain io.Reader returns
// audio.ErrNotSeekable.
package mp3
