// SPDX-License-Identifier: EPL-2.0

package command

import "errors"

var (
	ErrEmpty             = errors.New("empty command")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrArgCount          = errors.New("wrong number of arguments")
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrTrailingEscape    = errors.New("line ends with an escape")
)
