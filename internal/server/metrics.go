package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platecrnn_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platecrnn_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Recognition metrics
	recognitionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platecrnn_recognition_requests_total",
			Help: "Total number of recognition requests",
		},
		[]string{"status"},
	)

	recognitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platecrnn_recognition_duration_seconds",
			Help:    "Recognition duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	recognitionTextLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platecrnn_recognition_text_length",
			Help:    "Length of recognized plate text",
			Buckets: []float64{0, 2, 4, 6, 8, 10, 12, 16},
		},
	)

	recognitionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platecrnn_recognition_confidence",
			Help:    "Mean per-character confidence of recognized text",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)
