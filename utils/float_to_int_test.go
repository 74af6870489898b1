// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{name: "zero", input: 0.0, want: 0},
		{name: "max positive", input: 1.0, want: math.MaxInt16},
		{name: "max negative", input: -1.0, want: math.MinInt16},
		{name: "half positive", input: 0.5, want: 16384},
		{name: "half negative", input: -0.5, want: -16384},
		{name: "quarter positive", input: 0.25, want: 8192},
		{name: "small positive", input: 0.001, want: 33},
		{name: "small negative", input: -0.001, want: -33},
		{name: "one step", input: 1.0 / 32767, want: 1},
		{name: "clamp over max", input: 1.5, want: math.MaxInt16},
		{name: "clamp over min", input: -1.5, want: math.MinInt16},
		{name: "clamp way over max", input: 100.0, want: math.MaxInt16},
		{name: "clamp way under min", input: -100.0, want: math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestFloat32ToInt16Ramp checks that i/32767 survives the round trip exactly.
func TestFloat32ToInt16Ramp(t *testing.T) {
	t.Parallel()

	for i := range 32768 {
		if got := Float32ToInt16(float32(i) / 32767); int(got) != min(i, 32767) {
			t.Fatalf("Float32ToInt16(%d/32767) = %d", i, got)
		}
	}
}

func TestFloat32ToInt16Monotonic(t *testing.T) {
	t.Parallel()

	prev := Float32ToInt16(-1.0)

	for f := -0.99; f <= 1.0; f += 0.01 {
		curr := Float32ToInt16(float32(f))
		if curr < prev {
			t.Errorf("Float32ToInt16 not monotonic: f=%v gives %v, but previous was %v",
				f, curr, prev)
		}
		prev = curr
	}
}

func TestPutPCM16LE(t *testing.T) {
	t.Parallel()

	src := []float32{0, 1, -1, 0.5}
	dst := make([]byte, 8)

	if n := PutPCM16LE(dst, src); n != 8 {
		t.Fatalf("PutPCM16LE() = %d, want 8", n)
	}

	want := []int16{0, math.MaxInt16, math.MinInt16, 16384}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(dst[2*i:])); got != w {
			t.Errorf("value %d = %d, want %d", i, got, w)
		}
	}
}

func TestPutPCM16LE_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	src := make([]float32, 1024)
	dst := make([]byte, 2048)

	allocs := testing.AllocsPerRun(100, func() {
		PutPCM16LE(dst, src)
	})

	if allocs > 0 {
		t.Errorf("PutPCM16LE allocated %v times, want 0", allocs)
	}
}

func BenchmarkPutPCM16LE(b *testing.B) {
	src := make([]float32, 8000)
	dst := make([]byte, 16000)
	for i := range src {
		src[i] = float32(math.Sin(float64(i) * 0.1))
	}

	b.ReportAllocs()

	for b.Loop() {
		PutPCM16LE(dst, src)
	}
}
