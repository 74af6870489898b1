// SPDX-License-Identifier: EPL-2.0

package engine

import "sync/atomic"

// counters are written from the callback; everything else only loads them.
type counters struct {
	callbacks        atomic.Uint64
	deliveredSamples atomic.Uint64
	silentSamples    atomic.Uint64
	underruns        atomic.Uint64
	driverUnderflows atomic.Uint64
	completions      atomic.Uint64
}

// output is the real-time side. callback must not block, allocate, log or
// take locks.
type output struct {
	sh         *shared
	sampleSize int
	stats      *counters
	completed  atomic.Bool
}

func (o *output) callback(out []byte, frames int, _ TimeInfo, flags CallbackFlags) Result {
	o.stats.callbacks.Add(1)
	if flags&OutputUnderflow != 0 {
		o.stats.driverUnderflows.Add(1)
	}

	rb := o.sh.rb
	remaining := min(frames, len(out)/o.sampleSize)
	pos := 0

	for remaining > 0 {
		if avail := rb.ReadCapacity(); avail > 0 {
			if n := rb.Read(out[pos:], min(remaining, avail)); n > 0 {
				pos += n * o.sampleSize
				remaining -= n
				o.sh.position.Add(uint64(n))
				o.stats.deliveredSamples.Add(uint64(n))
				continue
			}
		} else if o.sh.ended.Load() {
			// ended is stored after the last write, so an empty buffer seen
			// after it means the stream is fully drained.
			if rb.ReadCapacity() == 0 {
				o.completed.Store(true)
				o.stats.completions.Add(1)
				return Complete
			}
			continue
		}

		clear(out[pos : pos+remaining*o.sampleSize])
		o.stats.silentSamples.Add(uint64(remaining))
		o.stats.underruns.Add(1)
		return Continue
	}

	return Continue
}
