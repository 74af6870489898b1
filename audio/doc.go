// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives used by the playback engine.
//
// # Source Interface
//
// Format decoders produce a Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 values in [-1.0, 1.0]. ReadSamples returns
// io.EOF once the stream is finished. Sources that can reposition themselves
// also implement Seeker.
//
// # PCM Frames
//
// PCMDecoder converts a Source into the fixed format the engine moves around:
// interleaved signed 16-bit little-endian PCM. In that format one "sample"
// is a full interleaved frame, so a stereo sample is 4 bytes.
//
//	dec, _ := audio.NewPCMDecoder(src)
//	for {
//	    frame, err := dec.Decode()
//	    if err != nil {
//	        return err
//	    }
//	    if len(frame) == 0 {
//	        break // end of stream
//	    }
//	    // consume frame
//	}
//
// PCMDecoder also converts between play time, sample counts and byte counts
// and implements seeking on top of Seeker.
//
// # Format Registry
//
// The registry maps lowercase format keys (usually file extensions) to
// decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, _ := registry.Get("WAV")
package audio
