// SPDX-License-Identifier: EPL-2.0

package portaudio

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gordonklaus/portaudio"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
)

type Config struct {
	Format audio.Format
	// Device is a device index or name. Empty selects the default output.
	Device string
	// FramesPerBuffer of zero lets PortAudio choose.
	FramesPerBuffer int
	Logger          *slog.Logger
}

// Driver is an engine.Driver backed by a PortAudio output stream.
type Driver struct {
	stream   *portaudio.Stream
	cb       engine.Callback
	channels int
	log      *slog.Logger

	mtx    sync.Mutex
	closed bool

	running atomic.Bool
	// gen identifies the current run so a late completion notice cannot
	// stop a stream that was restarted since.
	gen       atomic.Uint64
	completed atomic.Bool
	complete  chan uint64
	quit      chan struct{}
	wg        sync.WaitGroup
}

// Open returns an opener for a PortAudio stream on cfg.Device.
func Open(cfg Config) engine.Opener {
	return func(cb engine.Callback) (engine.Driver, error) {
		f := cfg.Format
		if f.SampleRate <= 0 || f.Channels <= 0 {
			return nil, fmt.Errorf("portaudio: %w: %s", audio.ErrInvalidFormat, f)
		}

		dev, err := outputDevice(cfg.Device)
		if err != nil {
			return nil, err
		}
		if dev.MaxOutputChannels < f.Channels {
			return nil, fmt.Errorf("%w: %s has %d channels, need %d", ErrNoOutput, dev.Name, dev.MaxOutputChannels, f.Channels)
		}

		log := cfg.Logger
		if log == nil {
			log = slog.Default()
		}

		d := &Driver{
			cb:       cb,
			channels: f.Channels,
			log:      log,
			complete: make(chan uint64, 1),
			quit:     make(chan struct{}),
		}

		params := portaudio.LowLatencyParameters(nil, dev)
		params.Output.Channels = f.Channels
		params.SampleRate = float64(f.SampleRate)
		params.FramesPerBuffer = cfg.FramesPerBuffer

		stream, err := portaudio.OpenStream(params, d.callback)
		if err != nil {
			return nil, fmt.Errorf("open stream on %s: %w", dev.Name, err)
		}
		d.stream = stream

		d.wg.Add(1)
		go d.watch()

		log.Debug("opened portaudio stream",
			"device", dev.Name,
			"format", f.String(),
			"latency", params.Output.Latency,
			"frames_per_buffer", params.FramesPerBuffer)

		return d, nil
	}
}

func (d *Driver) callback(out []int16, info portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	clear(out)
	if d.completed.Load() {
		return
	}

	frames := len(out) / d.channels
	res := d.cb(int16Bytes(out), frames, engine.TimeInfo{
		CurrentTime:   info.CurrentTime,
		OutputDacTime: info.OutputBufferDacTime,
	}, convertFlags(flags))
	toHostOrder(out)

	if res == engine.Complete {
		d.completed.Store(true)
		select {
		case d.complete <- d.gen.Load():
		default:
		}
	}
}

// watch stops the stream once the callback reported completion. A stream
// cannot be stopped from inside its own callback.
func (d *Driver) watch() {
	defer d.wg.Done()

	for {
		select {
		case <-d.quit:
			return
		case gen := <-d.complete:
			d.finish(gen)
		}
	}
}

func (d *Driver) finish(gen uint64) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if gen != d.gen.Load() || !d.running.Load() {
		return
	}

	// Stop lets the queued buffers play out.
	if err := d.stream.Stop(); err != nil {
		d.log.Warn("stopping completed stream", "error", err)
	}
	d.running.Store(false)
}

func (d *Driver) Start() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.running.Load() {
		return nil
	}

	d.gen.Add(1)
	d.completed.Store(false)
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	d.running.Store(true)

	return nil
}

// Stop aborts the stream, discarding queued buffers.
func (d *Driver) Stop() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.abortLocked()
}

func (d *Driver) abortLocked() error {
	if !d.running.Load() {
		return nil
	}

	d.running.Store(false)
	if err := d.stream.Abort(); err != nil {
		return fmt.Errorf("abort stream: %w", err)
	}
	return nil
}

func (d *Driver) IsStopped() bool { return !d.running.Load() }

func (d *Driver) Close() error {
	d.mtx.Lock()
	if d.closed {
		d.mtx.Unlock()
		return nil
	}
	d.closed = true
	abortErr := d.abortLocked()
	d.mtx.Unlock()

	close(d.quit)
	d.wg.Wait()

	if err := d.stream.Close(); err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	return abortErr
}

// int16Bytes views s as bytes without copying.
func int16Bytes(s []int16) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*2)
}

var bigEndianHost = func() bool {
	v := uint16(1)
	return *(*byte)(unsafe.Pointer(&v)) == 0
}()

// toHostOrder converts little-endian values written through int16Bytes to
// the host byte order.
func toHostOrder(s []int16) {
	if !bigEndianHost {
		return
	}
	for i, v := range s {
		u := uint16(v)
		s[i] = int16(u<<8 | u>>8)
	}
}

func convertFlags(f portaudio.StreamCallbackFlags) engine.CallbackFlags {
	var out engine.CallbackFlags
	if f&portaudio.OutputUnderflow != 0 {
		out |= engine.OutputUnderflow
	}
	if f&portaudio.OutputOverflow != 0 {
		out |= engine.OutputOverflow
	}
	if f&portaudio.PrimingOutput != 0 {
		out |= engine.PrimingOutput
	}
	return out
}
