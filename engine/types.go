// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"time"
)

// Decoder produces successive frames of fixed-format sample bytes and
// converts between play time, sample counts and byte counts.
type Decoder interface {
	// Decode returns the next frame. An empty frame means the stream is
	// exhausted. The frame may be reused by the next Decode or SeekTo.
	Decode() ([]byte, error)
	SeekTo(t time.Duration) error

	SampleCountForTime(t time.Duration) uint64
	TimeForSampleCount(n uint64) time.Duration
	BytesForSamples(n int) int
	SamplesForBytes(n int) int
}

// RingBuffer is a single-producer single-consumer sample store. Counts
// are in samples.
type RingBuffer interface {
	Capacity() int
	ElemSize() int
	WriteCapacity() int
	ReadCapacity() int
	Write(src []byte, count int) int
	Read(dst []byte, count int) int
	Flush()
}

// Result tells the driver whether to keep calling back.
type Result int

const (
	Continue Result = iota
	// Complete means the stream ended and every buffered sample was
	// delivered. The part of the output buffer past the delivered samples
	// was not written.
	Complete
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// TimeInfo carries the driver's stream clock for one callback.
type TimeInfo struct {
	CurrentTime   time.Duration
	OutputDacTime time.Duration
}

// CallbackFlags are status bits reported by the driver.
type CallbackFlags uint32

const (
	OutputUnderflow CallbackFlags = 1 << iota
	OutputOverflow
	PrimingOutput
)

// Callback fills out with frames samples. It runs on the driver's real-time
// thread.
type Callback func(out []byte, frames int, info TimeInfo, flags CallbackFlags) Result

// Driver runs a Callback against an audio device. A driver is created
// stopped. When the callback returns Complete the driver stops itself.
// The engine never calls Start, Stop or Close concurrently, but IsStopped
// may race with any of them and with the self-stop.
type Driver interface {
	Start() error
	// Stop halts the stream at once, dropping whatever the device still
	// has queued.
	Stop() error
	IsStopped() bool
	Close() error
}

// Opener creates a driver bound to cb.
type Opener func(cb Callback) (Driver, error)
