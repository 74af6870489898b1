// SPDX-License-Identifier: EPL-2.0

package output

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
	wavfmt "github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/internal/audiotest"
	"github.com/ik5/audplay/ringbuffer"
)

func newEngine(t *testing.T, frames int, open func(audio.Format) engine.Opener) (*engine.Engine, *audio.PCMDecoder) {
	t.Helper()

	dec, err := audio.NewPCMDecoder(audiotest.NewRampSource(8000, 1, frames).WithBufSize(64))
	if err != nil {
		t.Fatalf("NewPCMDecoder() error = %v", err)
	}

	rb, err := ringbuffer.New(10, dec.BytesForSamples(1))
	if err != nil {
		t.Fatalf("ringbuffer.New() error = %v", err)
	}

	eng, err := engine.New(dec, rb, open(dec.Format()), engine.Config{SpinUp: 256})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	return eng, dec
}

// play runs the fill loop until the driver stops on its own.
func play(t *testing.T, eng *engine.Engine) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for !eng.IsStopped() {
		if ctx.Err() != nil {
			t.Fatal("playback did not finish")
		}
		if _, err := eng.Update(); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManual_PullsOnlyWhenRunning(t *testing.T) {
	t.Parallel()

	var m *Manual
	eng, _ := newEngine(t, 100, func(f audio.Format) engine.Opener { return NewManual(f, &m) })

	if _, _, ok := m.Pull(10); ok {
		t.Fatal("Pull() ran while stopped")
	}

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var got []int
	for {
		buf, res, ok := m.Pull(32)
		if !ok {
			t.Fatal("Pull() reported stopped before completion")
		}
		for i := 0; i+1 < len(buf); i += 2 {
			got = append(got, int(binary.LittleEndian.Uint16(buf[i:])))
		}
		if res == engine.Complete {
			break
		}
	}

	if !m.IsStopped() {
		t.Error("driver still running after Complete")
	}
	for i := range 100 {
		if got[i] != i {
			t.Fatalf("sample %d = %d", i, got[i])
		}
	}
	// 100 samples in buffers of 32: 4 buffers, the tail zeroed.
	if len(got) != 128 {
		t.Errorf("pulled %d samples, want 128", len(got))
	}
	if eng.CurrentPosition() != 100*time.Second/8000 {
		t.Errorf("CurrentPosition() = %s", eng.CurrentPosition())
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after Close() error = %v, want ErrClosed", err)
	}
}

func TestNull_PlaysToCompletion(t *testing.T) {
	t.Parallel()

	// 0.1s of audio in 10ms buffers.
	eng, _ := newEngine(t, 800, func(f audio.Format) engine.Opener { return Null(f, 80, nil) })
	defer eng.Close()

	play(t, eng)

	if !eng.Completed() {
		t.Error("Completed() = false")
	}
	if s := eng.Stats(); s.DeliveredSamples != 800 {
		t.Errorf("DeliveredSamples = %d, want 800", s.DeliveredSamples)
	}
}

func TestNull_StopAndRestart(t *testing.T) {
	t.Parallel()

	eng, _ := newEngine(t, 8000, func(f audio.Format) engine.Opener { return Null(f, 80, nil) })
	defer eng.Close()

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if err := eng.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !eng.IsStopped() {
		t.Fatal("IsStopped() = false after Stop()")
	}

	pos := eng.CurrentPosition()
	time.Sleep(30 * time.Millisecond)
	if eng.CurrentPosition() != pos {
		t.Error("position moved while stopped")
	}

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	if eng.IsStopped() {
		t.Error("IsStopped() = true after restart")
	}
}

func TestPump_InvalidArguments(t *testing.T) {
	t.Parallel()

	cb := func([]byte, int, engine.TimeInfo, engine.CallbackFlags) engine.Result { return engine.Continue }

	if _, err := Null(audio.Format{SampleRate: 8000, Channels: 1}, 0, nil)(cb); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("zero buffer error = %v, want ErrInvalidBuffer", err)
	}
	if _, err := Null(audio.Format{}, 64, nil)(cb); !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("empty format error = %v, want ErrInvalidFormat", err)
	}
	if _, err := WAVFile(filepath.Join(t.TempDir(), "missing", "out.wav"), audio.Format{SampleRate: 8000, Channels: 1}, 64, nil)(cb); err == nil {
		t.Error("WAVFile() into a missing directory succeeded")
	}
}

func TestWAVFile_RecordsPlayback(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "render.wav")
	eng, _ := newEngine(t, 1000, func(f audio.Format) engine.Opener { return WAVFile(path, f, 100, nil) })

	play(t, eng)

	if err := eng.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := wavfmt.Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("decode render: %v", err)
	}
	if src.SampleRate() != 8000 || src.Channels() != 1 {
		t.Fatalf("render format = %d Hz / %d ch", src.SampleRate(), src.Channels())
	}

	var values []int
	buf := make([]float32, 256)
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			values = append(values, int(v*32768))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if len(values) < 1000 || len(values)%100 != 0 {
		t.Fatalf("render holds %d samples, want whole buffers covering 1000", len(values))
	}

	// Underruns may insert silence; the audio itself must be intact and in order.
	next := 1
	for _, v := range values {
		if v == 0 {
			continue
		}
		if v != next {
			t.Fatalf("sample %d out of order (got %d)", next, v)
		}
		next++
	}
	if next != 1000 {
		t.Errorf("found samples up to %d, want 999", next-1)
	}
}
