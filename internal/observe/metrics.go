// SPDX-License-Identifier: EPL-2.0

// Package observe records audplay metrics through the OpenTelemetry
// Metrics API. [InitProvider] bridges them to a Prometheus exporter so they
// can be scraped from /metrics; tests should use [NewMetrics] with their own
// [metric.MeterProvider].
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/player"
)

// meterName is the instrumentation scope name used for all audplay metrics.
const meterName = "github.com/ik5/audplay"

// Metrics holds the metric instruments of a player. It implements
// [player.Observer].
type Metrics struct {
	meter metric.Meter

	// --- Counters ---

	// Loads counts load attempts. Attribute: status (ok, error).
	Loads metric.Int64Counter

	Seeks metric.Int64Counter

	// UpdateErrors counts fill steps that failed and ejected the file.
	UpdateErrors metric.Int64Counter

	// StateTransitions counts player state changes. Attributes: from, to.
	StateTransitions metric.Int64Counter

	// PreFillDuration tracks how long Play took to buffer before audio
	// started.
	PreFillDuration metric.Float64Histogram

	// --- Engine counters, observed from [engine.Stats] ---

	Callbacks        metric.Int64ObservableCounter
	DeliveredSamples metric.Int64ObservableCounter
	SilentSamples    metric.Int64ObservableCounter
	Underruns        metric.Int64ObservableCounter
	DriverUnderflows metric.Int64ObservableCounter
	Completions      metric.Int64ObservableCounter
}

var preFillBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{meter: m}

	if met.Loads, err = m.Int64Counter("audplay.player.loads",
		metric.WithDescription("File loads by status."),
	); err != nil {
		return nil, err
	}
	if met.Seeks, err = m.Int64Counter("audplay.player.seeks",
		metric.WithDescription("Successful seeks."),
	); err != nil {
		return nil, err
	}
	if met.UpdateErrors, err = m.Int64Counter("audplay.player.update_errors",
		metric.WithDescription("Fill steps that failed and ejected the file."),
	); err != nil {
		return nil, err
	}
	if met.StateTransitions, err = m.Int64Counter("audplay.player.state_transitions",
		metric.WithDescription("Player state changes by from and to state."),
	); err != nil {
		return nil, err
	}
	if met.PreFillDuration, err = m.Float64Histogram("audplay.engine.prefill.duration",
		metric.WithDescription("Time spent filling the ring buffer before playback started."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(preFillBuckets...),
	); err != nil {
		return nil, err
	}

	observables := []struct {
		dst  *metric.Int64ObservableCounter
		name string
		desc string
	}{
		{&met.Callbacks, "audplay.engine.callbacks", "Driver callbacks served."},
		{&met.DeliveredSamples, "audplay.engine.delivered_samples", "Samples copied from the ring buffer to the driver."},
		{&met.SilentSamples, "audplay.engine.silent_samples", "Samples filled with silence on underrun."},
		{&met.Underruns, "audplay.engine.underruns", "Callbacks that ran out of buffered samples."},
		{&met.DriverUnderflows, "audplay.engine.driver_underflows", "Output underflows reported by the driver."},
		{&met.Completions, "audplay.engine.completions", "Streams played to their last sample."},
	}
	for _, o := range observables {
		if *o.dst, err = m.Int64ObservableCounter(o.name, metric.WithDescription(o.desc)); err != nil {
			return nil, err
		}
	}

	return met, nil
}

// WatchStats reports the counters returned by stats on every collection.
// Unregister the returned registration to stop.
func (m *Metrics) WatchStats(stats func() engine.Stats) (metric.Registration, error) {
	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(m.Callbacks, int64(s.Callbacks))
		o.ObserveInt64(m.DeliveredSamples, int64(s.DeliveredSamples))
		o.ObserveInt64(m.SilentSamples, int64(s.SilentSamples))
		o.ObserveInt64(m.Underruns, int64(s.Underruns))
		o.ObserveInt64(m.DriverUnderflows, int64(s.DriverUnderflows))
		o.ObserveInt64(m.Completions, int64(s.Completions))
		return nil
	}, m.Callbacks, m.DeliveredSamples, m.SilentSamples, m.Underruns, m.DriverUnderflows, m.Completions)
}

func (m *Metrics) Loaded(_ string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Loads.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) Started(prefill time.Duration) {
	m.PreFillDuration.Record(context.Background(), prefill.Seconds())
}

func (m *Metrics) Seeked(time.Duration) {
	m.Seeks.Add(context.Background(), 1)
}

func (m *Metrics) StateChanged(from, to player.State) {
	m.StateTransitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	))
}

func (m *Metrics) UpdateFailed(error) {
	m.UpdateErrors.Add(context.Background(), 1)
}

var _ player.Observer = (*Metrics)(nil)
