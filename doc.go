// SPDX-License-Identifier: EPL-2.0

// Package audplay plays audio files through a lock-free ring buffer.
//
// Decoding and real-time delivery run on different schedules. A fill loop
// decodes the file and writes PCM into a single-producer single-consumer
// ring buffer, while the sound card driver calls back on its own thread
// to drain it. The two only share the ring buffer, an end-of-stream flag
// and the play position counter.
//
// # Packages
//
//   - audio: Source interface, format registry and the PCM frame decoder
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: seekable decoders
//   - ringbuffer: the lock-free SPSC ring buffer
//   - engine: fill loop, real-time output callback and position tracking
//   - output, output/portaudio: drivers that run the callback
//   - player: load/play/stop/seek/eject state machine over the engine
//
// # Quick Start
//
//	pcm, err := audplay.OpenPCM(audplay.DefaultRegistry(), "song.ogg")
//	if err != nil {
//	    return err
//	}
//	defer pcm.Close()
//
//	rb, err := ringbuffer.New(16, pcm.BytesForSamples(1))
//	if err != nil {
//	    return err
//	}
//	eng, err := engine.New(pcm, rb, opener, engine.Config{})
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	if err := eng.Start(ctx); err != nil {
//	    return err
//	}
//	for !eng.IsStopped() {
//	    if _, err := eng.Update(); err != nil {
//	        return err
//	    }
//	    time.Sleep(time.Millisecond)
//	}
//
// # Supported Formats
//
//   - WAV (PCM 16-bit)
//   - MP3
//   - Ogg Vorbis
//   - AIFF (PCM 16-bit)
//
// DefaultRegistry maps the file extensions wav, mp3, ogg, oga, aif and aiff
// to those decoders.
package audplay
