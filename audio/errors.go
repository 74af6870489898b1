// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrNotSeekable   = errors.New("source does not support seeking")
	ErrInvalidFormat = errors.New("source reports an invalid sample rate or channel count")
	ErrNegativeSeek  = errors.New("seek position must not be negative")
	ErrSourceStalled = errors.New("source returned no samples without reaching end of stream")
	ErrUnknownFormat = errors.New("no decoder registered for format")
)
