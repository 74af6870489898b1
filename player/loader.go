// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/ringbuffer"
)

// Engine is the part of *engine.Engine the player drives. Close must also
// release the decoder.
type Engine interface {
	Start(ctx context.Context) error
	Stop() error
	IsStopped() bool
	Update() (bool, error)
	SeekTo(ctx context.Context, t time.Duration) error
	CurrentPosition() time.Duration
	Stats() engine.Stats
	Close() error
}

// Loader opens a file and builds a stopped engine for it.
type Loader interface {
	Load(path string) (Engine, error)
}

type LoaderFunc func(path string) (Engine, error)

func (f LoaderFunc) Load(path string) (Engine, error) { return f(path) }

// Track is an engine together with the decoder it plays from.
type Track struct {
	*engine.Engine
	dec io.Closer
}

func NewTrack(eng *engine.Engine, dec io.Closer) *Track {
	return &Track{Engine: eng, dec: dec}
}

// Close stops the engine and closes the decoder.
func (t *Track) Close() error {
	return errors.Join(t.Engine.Close(), t.dec.Close())
}

// FileLoader decodes files picked by extension from Registry and plays them
// through the driver Output opens for the decoded format.
type FileLoader struct {
	Registry  *audio.Registry
	Output    func(audio.Format) engine.Opener
	RingPower uint
	Engine    engine.Config
}

func (l FileLoader) Load(path string) (Engine, error) {
	dec, err := audplay.OpenPCM(l.Registry, path)
	if err != nil {
		return nil, err
	}

	power := l.RingPower
	if power == 0 {
		power = engine.DefaultRingPower
	}

	rb, err := ringbuffer.New(power, dec.BytesForSamples(1))
	if err != nil {
		dec.Close()
		return nil, fmt.Errorf("ring buffer: %w", err)
	}

	eng, err := engine.New(dec, rb, l.Output(dec.Format()), l.Engine)
	if err != nil {
		dec.Close()
		return nil, err
	}

	return NewTrack(eng, dec), nil
}
