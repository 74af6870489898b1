// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/aiff"
	"github.com/ik5/audplay/formats/mp3"
	"github.com/ik5/audplay/formats/vorbis"
	"github.com/ik5/audplay/formats/wav"
)

// DefaultRegistry returns a registry with every bundled decoder, keyed by
// file extension.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})

	return reg
}

// fileSource ties a decoded source to the file it reads from.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) SeekSamples(frame int64) error {
	sk, ok := s.Source.(audio.Seeker)
	if !ok {
		return audio.ErrNotSeekable
	}
	return sk.SeekSamples(frame)
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

// OpenFile picks a decoder from reg by the extension of path and decodes
// the file. Closing the returned source closes the file.
func OpenFile(reg *audio.Registry, path string) (audio.Source, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	dec, ok := reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%s: %w %q", path, audio.ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

// OpenPCM opens path like OpenFile and wraps the result in a PCM decoder.
func OpenPCM(reg *audio.Registry, path string) (*audio.PCMDecoder, error) {
	src, err := OpenFile(reg, path)
	if err != nil {
		return nil, err
	}

	pcm, err := audio.NewPCMDecoder(src)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return pcm, nil
}
