// SPDX-License-Identifier: EPL-2.0

// Package utils holds sample conversion helpers shared by the decoders.
package utils

import "encoding/binary"

// Float32ToInt16 converts a normalized sample to 16-bit PCM, rounding to the
// nearest step. Values outside [-1,1] are clamped, and -1 maps to MinInt16.
func Float32ToInt16(x float32) int16 {
	switch {
	case x >= 1:
		return 32767
	case x <= -1:
		return -32768
	case x >= 0:
		return int16(x*32767.0 + 0.5)
	default:
		return int16(x*32768.0 - 0.5)
	}
}

// PutPCM16LE encodes src as little-endian 16-bit PCM into dst and returns
// the number of bytes written. dst must hold at least 2*len(src) bytes.
func PutPCM16LE(dst []byte, src []float32) int {
	for i, v := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(Float32ToInt16(v)))
	}
	return 2 * len(src)
}
