// Package metrics exposes Prometheus collectors for parsing and transform
// activity. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scu-obit/fcskit/pkg/fcs"
)

const namespace = "fcskit"

// Hyperlog directions.
const (
	DirectionForward = "forward"
	DirectionInverse = "inverse"
)

type Metrics struct {
	FilesParsed    *prometheus.CounterVec
	ParseDuration  prometheus.Histogram
	EventsDecoded  prometheus.Counter
	ParseWarnings  *prometheus.CounterVec
	HyperlogValues *prometheus.CounterVec
	StoredFiles    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		FilesParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fcs",
				Name:      "files_parsed_total",
				Help:      "FCS files parsed, by outcome",
			},
			[]string{"status"},
		),
		ParseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "fcs",
				Name:      "parse_duration_seconds",
				Help:      "Time spent in fcs.Parse",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		EventsDecoded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fcs",
				Name:      "events_decoded_total",
				Help:      "Events decoded from DATA segments",
			},
		),
		ParseWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fcs",
				Name:      "parse_warnings_total",
				Help:      "Recoverable problems found while parsing, by warning code",
			},
			[]string{"code"},
		),
		HyperlogValues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hyperlog",
				Name:      "values_total",
				Help:      "Values passed through the Hyperlog transform",
			},
			[]string{"direction"},
		),
		StoredFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "stored_files",
				Help:      "Parsed files held by the inspection service",
			},
		),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesParsed,
		m.ParseDuration,
		m.EventsDecoded,
		m.ParseWarnings,
		m.HyperlogValues,
		m.StoredFiles,
	}
}

// ObserveParse records the outcome of one fcs.Parse call.
func (m *Metrics) ObserveParse(f *fcs.File, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.ParseDuration.Observe(d.Seconds())
	m.FilesParsed.WithLabelValues(Status(err)).Inc()
	if err != nil || f == nil {
		return
	}
	if f.Events != nil {
		m.EventsDecoded.Add(float64(f.Events.Rows()))
	}
	for _, w := range f.Warnings {
		m.ParseWarnings.WithLabelValues(string(w.Code)).Inc()
	}
}

// ObserveHyperlog counts n transformed values.
func (m *Metrics) ObserveHyperlog(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.HyperlogValues.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) SetStoredFiles(n int) {
	if m == nil {
		return
	}
	m.StoredFiles.Set(float64(n))
}

var statusByError = []struct {
	err    error
	status string
}{
	{fcs.ErrUnsupportedVersion, "unsupported_version"},
	{fcs.ErrMalformedHeader, "malformed_header"},
	{fcs.ErrMalformedTextSegment, "malformed_text"},
	{fcs.ErrMalformedDataOffsets, "malformed_data_offsets"},
	{fcs.ErrMissingKeyword, "missing_keyword"},
	{fcs.ErrMissingParameterMetadata, "missing_parameter"},
	{fcs.ErrUnsupportedMode, "unsupported_mode"},
	{fcs.ErrUnsupportedDataType, "unsupported_datatype"},
	{fcs.ErrUnsupportedByteOrder, "unsupported_byteorder"},
}

// Status maps a Parse error to a low-cardinality label value.
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	for _, s := range statusByError {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return "error"
}
