// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	ErrInvalidBuffer = errors.New("output: frames per buffer must be positive")
	ErrClosed        = errors.New("output: driver closed")
)
