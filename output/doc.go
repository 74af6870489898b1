// SPDX-License-Identifier: EPL-2.0

// Package output provides engine drivers that do not need a sound card.
//
// Null and WAVFile run the engine callback from a goroutine paced by the
// wall clock, one buffer every framesPerBuffer/sampleRate, the way a
// device would. Null throws the audio away; WAVFile records it. Manual
// runs the callback only when asked, for tests and tools that drive
// playback step by step.
//
// The real-time driver for sound cards lives in output/portaudio.
package output
