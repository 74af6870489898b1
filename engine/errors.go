// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrInternalConsistency reports a broken invariant between the fill
	// loop and the ring buffer, such as a write that fell short of the
	// capacity checked just before it. The engine cannot continue.
	ErrInternalConsistency = errors.New("engine: internal consistency failure")

	ErrClosed        = errors.New("engine: closed")
	ErrNilDependency = errors.New("engine: decoder, ring buffer and driver opener are required")
	ErrElemSize      = errors.New("engine: ring buffer element size does not match decoder sample size")
)
