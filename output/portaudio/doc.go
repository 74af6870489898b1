// SPDX-License-Identifier: EPL-2.0

// Package portaudio plays the engine callback through a PortAudio output
// stream.
//
// Initialize must be called once before Devices or Open, and Terminate once
// every stream was closed.
package portaudio
