// SPDX-License-Identifier: EPL-2.0

package player

import "fmt"

type State int

const (
	// Ejected: no file loaded.
	Ejected State = iota
	// Stopped: a file is loaded and paused.
	Stopped
	Playing
	// Quitting: the player is about to terminate and accepts no commands.
	Quitting
)

func (s State) String() string {
	switch s {
	case Ejected:
		return "Ejected"
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Quitting:
		return "Quitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) in(states ...State) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}
