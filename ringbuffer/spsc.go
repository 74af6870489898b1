// SPDX-License-Identifier: EPL-2.0

// Package ringbuffer provides a lock-free single-producer single-consumer
// ring buffer that moves fixed-size samples.
package ringbuffer

import (
	"errors"
	"sync/atomic"
)

// MaxPower bounds the capacity exponent.
const MaxPower = 30

var ErrInvalidSize = errors.New("ringbuffer: power must be in [1, 30] and element size positive")

// SPSC is a ring buffer of 2^power elements of elemSize bytes each. Counts
// passed to and returned from its methods are element counts.
//
// The write cursor belongs to the producer and the read cursor to the
// consumer. Both only grow; their difference is the number of buffered
// elements. Write, WriteCapacity: producer only. Read, ReadCapacity:
// consumer only. Flush: only while neither side is running.
type SPSC struct {
	// Separate cache lines for the two cursors.
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	buf      []byte
	size     uint64
	mask     uint64
	elemSize int
}

// New allocates a buffer holding 2^power elements of elemSize bytes.
func New(power uint, elemSize int) (*SPSC, error) {
	if power < 1 || power > MaxPower || elemSize <= 0 {
		return nil, ErrInvalidSize
	}

	size := uint64(1) << power
	return &SPSC{
		buf:      make([]byte, size*uint64(elemSize)),
		size:     size,
		mask:     size - 1,
		elemSize: elemSize,
	}, nil
}

// Capacity is the total number of elements the buffer holds.
func (rb *SPSC) Capacity() int { return int(rb.size) }

// ElemSize is the number of bytes in one element.
func (rb *SPSC) ElemSize() int { return rb.elemSize }

// WriteCapacity returns the number of elements that can be written now.
func (rb *SPSC) WriteCapacity() int {
	return int(rb.size - (rb.writePos.Load() - rb.readPos.Load()))
}

// ReadCapacity returns the number of elements that can be read now.
func (rb *SPSC) ReadCapacity() int {
	return int(rb.writePos.Load() - rb.readPos.Load())
}

// Write copies up to count elements from src and returns how many it
// copied. It never blocks.
func (rb *SPSC) Write(src []byte, count int) int {
	w := rb.writePos.Load()
	r := rb.readPos.Load()

	n := min(uint64(max(count, 0)), rb.size-(w-r), uint64(len(src)/rb.elemSize))
	if n == 0 {
		return 0
	}

	rb.copyIn(w&rb.mask, src, n)
	rb.writePos.Store(w + n)

	return int(n)
}

// Read copies up to count elements into dst and returns how many it
// copied. It never blocks or allocates.
func (rb *SPSC) Read(dst []byte, count int) int {
	r := rb.readPos.Load()
	w := rb.writePos.Load()

	n := min(uint64(max(count, 0)), w-r, uint64(len(dst)/rb.elemSize))
	if n == 0 {
		return 0
	}

	rb.copyOut(r&rb.mask, dst, n)
	rb.readPos.Store(r + n)

	return int(n)
}

// Flush discards buffered elements.
func (rb *SPSC) Flush() {
	rb.readPos.Store(rb.writePos.Load())
}

func (rb *SPSC) copyIn(pos uint64, src []byte, n uint64) {
	es := uint64(rb.elemSize)
	first := min(rb.size-pos, n)

	copy(rb.buf[pos*es:], src[:first*es])
	if first < n {
		copy(rb.buf, src[first*es:n*es])
	}
}

func (rb *SPSC) copyOut(pos uint64, dst []byte, n uint64) {
	es := uint64(rb.elemSize)
	first := min(rb.size-pos, n)

	copy(dst[:first*es], rb.buf[pos*es:])
	if first < n {
		copy(dst[first*es:n*es], rb.buf)
	}
}
