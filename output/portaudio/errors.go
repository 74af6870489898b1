// SPDX-License-Identifier: EPL-2.0

package portaudio

import "errors"

var (
	ErrDeviceNotFound = errors.New("portaudio: no such output device")
	ErrNoOutput       = errors.New("portaudio: device has no output channels")
	ErrClosed         = errors.New("portaudio: stream closed")
)
