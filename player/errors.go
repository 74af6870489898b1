// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	ErrBadState    = errors.New("player: command not valid in current state")
	ErrBadSeekTime = errors.New("player: invalid seek time")
	ErrEmptyPath   = errors.New("player: empty file name")
)
