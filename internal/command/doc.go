// SPDX-License-Identifier: EPL-2.0

// Package command implements the line protocol that controls a player.
//
// Each input line is one command: play, stop, ejct, quit, load <path> or
// seek <time>. Words are separated by spaces; single or double quotes group
// words and a backslash escapes the next character. Every line is answered
// with a response line made of a four letter code and its arguments.
package command
