package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportscope_analyses_processed_total",
		Help: "Total number of clip analyses processed, by status",
	}, []string{"status"})

	AnalysisStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sportscope_analysis_stage_duration_seconds",
		Help:    "Duration of the analysis pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	ClipsUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportscope_clips_uploaded_total",
		Help: "Total number of clips accepted by the upload endpoint",
	})

	ClipBytesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportscope_clip_bytes_uploaded_total",
		Help: "Total clip bytes accepted by the upload endpoint",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportscope_active_workers",
		Help: "Number of currently active workers analyzing clips",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportscope_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
