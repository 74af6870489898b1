// SPDX-License-Identifier: EPL-2.0

// Package engine moves decoded audio from a decoder to a real-time output
// callback through a single-producer single-consumer ring buffer.
//
// Two contexts share the engine. The fill goroutine calls Update in a loop;
// each call writes as many whole samples of the current decoded frame as
// the ring buffer has room for. The driver's real-time thread runs the
// callback, which drains the ring buffer into the device buffer, writes
// silence on underrun and returns Complete once the stream ended and the
// buffer is empty.
//
// Besides the ring buffer the two sides share an end-of-stream flag, set
// by the fill side, and a play position counter advanced by the callback.
// Seeking resets both and flushes the ring buffer while the driver is
// stopped.
//
//	eng, err := engine.New(dec, rb, opener, engine.Config{Logger: log})
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
package engine
