// SPDX-License-Identifier: EPL-2.0

package engine

import "log/slog"

const (
	// DefaultRingPower sizes the ring buffer at 2^16 samples.
	DefaultRingPower = 16
	// DefaultSpinUp is how many samples PreFill buffers before the driver
	// starts.
	DefaultSpinUp = 1 << 15
	// DefaultMaxPreFillUpdates caps the Update calls of a single PreFill.
	DefaultMaxPreFillUpdates = 1 << 12
)

type Config struct {
	SpinUp            int
	MaxPreFillUpdates int
	Logger            *slog.Logger
}

func (c Config) withDefaults(capacity int) Config {
	if c.SpinUp <= 0 {
		c.SpinUp = DefaultSpinUp
	}
	c.SpinUp = min(c.SpinUp, capacity)

	if c.MaxPreFillUpdates <= 0 {
		c.MaxPreFillUpdates = DefaultMaxPreFillUpdates
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return c
}
