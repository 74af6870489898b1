// SPDX-License-Identifier: EPL-2.0

package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ik5/audplay/internal/config"
	"github.com/ik5/audplay/internal/observe"
)

// lineLog collects response lines and lets tests wait for one starting
// with a given prefix.
type lineLog struct {
	mtx   sync.Mutex
	lines []string
	added chan struct{}
}

func newLineLog() *lineLog {
	return &lineLog{added: make(chan struct{}, 1)}
}

func (l *lineLog) Write(p []byte) (int, error) {
	l.mtx.Lock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		l.lines = append(l.lines, line)
	}
	l.mtx.Unlock()

	select {
	case l.added <- struct{}{}:
	default:
	}
	return len(p), nil
}

func (l *lineLog) snapshot() []string {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([]string(nil), l.lines...)
}

func (l *lineLog) waitFor(t *testing.T, want string) {
	t.Helper()

	deadline := time.After(10 * time.Second)
	for {
		for _, line := range l.snapshot() {
			if strings.HasPrefix(line, want) {
				return
			}
		}
		select {
		case <-l.added:
		case <-deadline:
			t.Fatalf("no %q in %q", want, l.snapshot())
		}
	}
}

// writeWAV stores a mono 16-bit ramp of n samples at 8 kHz.
func writeWAV(t *testing.T, n int) string {
	t.Helper()

	var buf bytes.Buffer
	le := binary.LittleEndian
	dataSize := uint32(2 * n)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, le, 36+dataSize)
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, le, uint32(16))
	_ = binary.Write(&buf, le, uint16(1))    // PCM
	_ = binary.Write(&buf, le, uint16(1))    // channels
	_ = binary.Write(&buf, le, uint32(8000)) // sample rate
	_ = binary.Write(&buf, le, uint32(16000))
	_ = binary.Write(&buf, le, uint16(2))
	_ = binary.Write(&buf, le, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, le, dataSize)
	for i := range n {
		_ = binary.Write(&buf, le, int16(i))
	}

	path := filepath.Join(t.TempDir(), "ramp.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Output.Driver = config.DriverNull
	cfg.Output.FramesPerBuffer = 80
	cfg.Engine.RingPower = 12
	cfg.Engine.SpinUpSamples = 1024
	return cfg
}

func TestRun_CommandResponses(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("ejct\nload missing.wav\nload notes.txt\nbogus\nquit\n")
	out := newLineLog()

	a, err := New(testConfig(), in, out)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.snapshot()
	prefixes := []string{
		"OHAI ",
		"WHAT ",
		"FAIL ",
		"FAIL ",
		"WHAT ",
		"STAT Ejected Quitting",
		"OKAY quit",
		"TTFN ",
	}
	if len(got) != len(prefixes) {
		t.Fatalf("responses = %q", got)
	}
	for i, p := range prefixes {
		if !strings.HasPrefix(got[i], p) {
			t.Errorf("response %d = %q, want prefix %q", i, got[i], p)
		}
	}
}

func TestRun_EndOfInputQuits(t *testing.T) {
	t.Parallel()

	out := newLineLog()
	a, err := New(testConfig(), strings.NewReader(""), out)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out.waitFor(t, "STAT Ejected Quitting")
}

func TestRun_ContextCancel(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	a, err := New(testConfig(), pr, newLineLog())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRun_PlaysFileToEnd(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, 1600) // 0.2s
	pr, pw := io.Pipe()
	out := newLineLog()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}

	a, err := New(testConfig(), pr, out, WithMetrics(metrics))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	if _, err := io.WriteString(pw, "load "+path+"\nplay\n"); err != nil {
		t.Fatal(err)
	}
	out.waitFor(t, "STAT Stopped Playing")
	out.waitFor(t, "TIME ")
	out.waitFor(t, "STAT Playing Ejected")

	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := a.Player().Stats().DeliveredSamples; got != 1600 {
		t.Errorf("DeliveredSamples = %d, want 1600", got)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "audplay.engine.completions" {
				found = true
			}
		}
	}
	if !found {
		t.Error("engine metrics not reported")
	}
}
