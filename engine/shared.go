// SPDX-License-Identifier: EPL-2.0

package engine

import "sync/atomic"

// shared is the state the fill side and the callback both touch besides
// the ring buffer. ended is written by the fill side only, position by the
// callback only; seeking resets both while the callback is not running.
type shared struct {
	rb       RingBuffer
	ended    atomic.Bool
	position atomic.Uint64
}
