// SPDX-License-Identifier: EPL-2.0

package command

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type Code string

const (
	// Okay echoes a command that was carried out.
	Okay Code = "OKAY"
	// What answers a command that is malformed or invalid in the current
	// state.
	What Code = "WHAT"
	// Fail reports a command that failed because of its environment, such
	// as a missing file.
	Fail Code = "FAIL"
	// Oops reports an internal error.
	Oops Code = "OOPS"

	Hello    Code = "OHAI"
	Goodbye  Code = "TTFN"
	State    Code = "STAT"
	Position Code = "TIME"
)

// Response is one protocol line.
type Response struct {
	Code Code
	Args []string
}

func (r Response) String() string {
	if len(r.Args) == 0 {
		return string(r.Code)
	}
	return string(r.Code) + " " + strings.Join(r.Args, " ")
}

// Writer serializes responses onto an output stream. It is safe for
// concurrent use.
type Writer struct {
	mtx sync.Mutex
	w   io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(r Response) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	_, err := fmt.Fprintln(w.w, r.String())
	return err
}

func (w *Writer) Respond(code Code, args ...string) error {
	return w.Write(Response{Code: code, Args: args})
}

// TimeResponse reports pos in whole microseconds.
func TimeResponse(pos time.Duration) Response {
	return Response{Code: Position, Args: []string{fmt.Sprint(pos.Microseconds())}}
}

// StateResponse reports a state change.
func StateResponse(from, to fmt.Stringer) Response {
	return Response{Code: State, Args: []string{from.String(), to.String()}}
}
