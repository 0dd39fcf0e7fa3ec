package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/pipeline"
)

// NewRegistry creates a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler exposing reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// DecoderMetrics counts pipeline outcomes and tracks the latest valid reading per
// sender. It implements pipeline.Observer.
type DecoderMetrics struct {
	Lines          prometheus.Counter
	Skipped        *prometheus.CounterVec // labels: reason
	Frames         *prometheus.CounterVec // labels: crc_result
	DecodeFailures *prometheus.CounterVec // labels: reason
	SinkErrors     prometheus.Counter
	TotalAh        *prometheus.GaugeVec // labels: sender
	CurrentA       *prometheus.GaugeVec // labels: sender
	LastValid      prometheus.Gauge

	now func() time.Time
}

// NewDecoderMetrics registers and returns the decoder metrics.
func NewDecoderMetrics(reg prometheus.Registerer) *DecoderMetrics {
	m := &DecoderMetrics{
		Lines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ampwatch_lines_total",
			Help: "Capture lines read.",
		}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ampwatch_lines_skipped_total",
			Help: "Capture lines without a usable frame field, by reason.",
		}, []string{"reason"}),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ampwatch_frames_total",
			Help: "Decoded frames by CRC result.",
		}, []string{"crc_result"}),
		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ampwatch_decode_failures_total",
			Help: "Frames that did not decode, by reason.",
		}, []string{"reason"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ampwatch_sink_errors_total",
			Help: "Errors returned by reading sinks.",
		}),
		TotalAh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ampwatch_total_ah",
			Help: "Cumulative charge reported by the sender, in ampere-hours.",
		}, []string{"sender"}),
		CurrentA: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ampwatch_current_a",
			Help: "Instantaneous current reported by the sender, in amperes.",
		}, []string{"sender"}),
		LastValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ampwatch_last_valid_timestamp_seconds",
			Help: "Unix time of the last reading with a valid CRC.",
		}),
		now: time.Now,
	}

	// Pre-create label values so every series is exported from the start
	for _, r := range []frame.CRCResult{frame.Valid, frame.ShiftedLeft, frame.ShiftedRight, frame.Invalid} {
		m.Frames.WithLabelValues(r.Label())
	}
	for _, et := range []frame.ErrorType{frame.ErrTypeResyncFailed, frame.ErrTypeTooShort, frame.ErrTypeBadHex} {
		m.DecodeFailures.WithLabelValues(et.Reason())
	}

	reg.MustRegister(m.Lines, m.Skipped, m.Frames, m.DecodeFailures, m.SinkErrors, m.TotalAh, m.CurrentA, m.LastValid)
	return m
}

// ObserveOutcome updates the counters for one processed line.
func (m *DecoderMetrics) ObserveOutcome(o pipeline.Outcome) {
	m.Lines.Inc()

	switch o.Kind {
	case pipeline.OutcomeSkipped:
		m.Skipped.WithLabelValues(o.SkipReason).Inc()

	case pipeline.OutcomeFailed:
		m.DecodeFailures.WithLabelValues(o.FailureType().Reason()).Inc()

	case pipeline.OutcomeDecoded:
		m.Frames.WithLabelValues(o.CRCResult().Label()).Inc()
		m.SinkErrors.Add(float64(len(o.SinkErrors)))

		// Only exact CRC matches are trusted for the live gauges
		if o.Reading != nil && o.Reading.Valid() {
			rec := o.Reading.Record
			m.TotalAh.WithLabelValues(rec.SenderID).Set(rec.TotalAh)
			m.CurrentA.WithLabelValues(rec.SenderID).Set(rec.CurrentA)
			m.LastValid.Set(float64(m.now().Unix()))
		}
	}
}
