package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	Runs            *prometheus.CounterVec
	RunDurationSec  prometheus.Histogram
	LastSuccessTime prometheus.Gauge

	OrdersPending   prometheus.Counter
	OrdersSkipped   prometheus.Counter
	Dispositions    *prometheus.CounterVec
	FilesUploaded   prometheus.Counter
	UploadFailures  prometheus.Counter
	MissingTracking prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "tracking_runs_total"}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracking_run_duration_seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{Name: "tracking_last_success_timestamp_seconds"})

	pending := prometheus.NewCounter(prometheus.CounterOpts{Name: "tracking_orders_pending_total"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "tracking_orders_skipped_total"})
	dispositions := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "tracking_order_dispositions_total"}, []string{"disposition"})
	files := prometheus.NewCounter(prometheus.CounterOpts{Name: "tracking_files_uploaded_total"})
	uploadFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "tracking_upload_failures_total"})
	missing := prometheus.NewCounter(prometheus.CounterOpts{Name: "tracking_missing_tracking_total"})

	r.MustRegister(runs, duration, lastSuccess, pending, skipped, dispositions, files, uploadFailures, missing)
	return &Registry{
		reg:             r,
		Runs:            runs,
		RunDurationSec:  duration,
		LastSuccessTime: lastSuccess,
		OrdersPending:   pending,
		OrdersSkipped:   skipped,
		Dispositions:    dispositions,
		FilesUploaded:   files,
		UploadFailures:  uploadFailures,
		MissingTracking: missing,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
