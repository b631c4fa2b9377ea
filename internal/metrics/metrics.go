// Package metrics exposes upload and validation measurements in the
// Prometheus format.
//
// Label values are limited to configured schema names and fixed outcome
// strings, so cardinality is bounded by the schema configuration rather
// than by user-supplied sheet names.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/SheetUpload/internal/core"
)

// Upload outcomes used as the status label of uploads_total.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected" // Client error: no file, wrong type, unreadable
	StatusBusy     = "busy"
	StatusError    = "error"
)

// Collector records engine and HTTP upload metrics into its own registry.
// It implements core.Recorder.
type Collector struct {
	registry *prometheus.Registry

	uploads         *prometheus.CounterVec
	uploadDuration  prometheus.Histogram
	sheets          *prometheus.CounterVec
	rows            *prometheus.CounterVec
	persisted       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
}

var _ core.Recorder = (*Collector)(nil)

// NewCollector creates a collector with metrics under namespace. If
// registry is nil a fresh one is created.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "sheetupload"
	}

	c := &Collector{
		registry: registry,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Workbook uploads by outcome.",
		}, []string{"status"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time to read, validate and persist one workbook.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		sheets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_total",
			Help:      "Sheets validated by resolved schema and outcome.",
		}, []string{"schema", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Data rows by resolved schema and outcome.",
		}, []string{"schema", "outcome"}),
		persisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persisted_records_total",
			Help:      "Records written to the store.",
		}, []string{"schema"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Sheet batches the store failed to write.",
		}, []string{"schema"}),
		persistDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Time to write one sheet batch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"schema"}),
	}

	registry.MustRegister(
		c.uploads,
		c.uploadDuration,
		c.sheets,
		c.rows,
		c.persisted,
		c.persistFailures,
		c.persistDuration,
	)
	return c
}

// ObserveSheet records the validation outcome of one sheet.
func (c *Collector) ObserveSheet(schema string, r *core.SheetResult) {
	if r.Empty {
		c.sheets.WithLabelValues(schema, "empty").Inc()
		return
	}
	c.sheets.WithLabelValues(schema, "processed").Inc()
	c.rows.WithLabelValues(schema, "valid").Add(float64(len(r.Records)))
	c.rows.WithLabelValues(schema, "rejected").Add(float64(len(r.RowErrors)))
	c.rows.WithLabelValues(schema, "blank").Add(float64(r.Blank))
}

// ObservePersist records one sheet batch write.
func (c *Collector) ObservePersist(schema string, records int, d time.Duration, err error) {
	c.persistDuration.WithLabelValues(schema).Observe(d.Seconds())
	if err != nil {
		c.persistFailures.WithLabelValues(schema).Inc()
		return
	}
	c.persisted.WithLabelValues(schema).Add(float64(records))
}

// ObserveUpload records one upload request.
func (c *Collector) ObserveUpload(status string, d time.Duration) {
	c.uploads.WithLabelValues(status).Inc()
	c.uploadDuration.Observe(d.Seconds())
}

// RegisterActiveUploads exposes the number of in-flight uploads as a gauge
// read from fn at scrape time.
func (c *Collector) RegisterActiveUploads(namespace string, fn func() float64) error {
	if namespace == "" {
		namespace = "sheetupload"
	}
	return c.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uploads_in_flight",
		Help:      "Uploads currently being processed.",
	}, fn))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition
// format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
