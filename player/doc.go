// SPDX-License-Identifier: EPL-2.0

// Package player drives one playback engine at a time through the
// Ejected, Stopped, Playing and Quitting states.
//
// A Player is owned by a single goroutine, which issues the commands and
// calls Update in a loop. Only Stats and State may be called from other
// goroutines.
package player
