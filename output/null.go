// SPDX-License-Identifier: EPL-2.0

package output

import (
	"log/slog"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/engine"
)

// Null returns an opener for a driver that plays into nothing at the pace
// of a real device.
func Null(f audio.Format, framesPerBuffer int, log *slog.Logger) engine.Opener {
	return func(cb engine.Callback) (engine.Driver, error) {
		return newPump(cb, f, framesPerBuffer, discard{}, log)
	}
}
