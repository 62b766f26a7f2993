package poller

import "github.com/prometheus/client_golang/prometheus"

var (
	cyclesTotal    *prometheus.CounterVec
	samplesWritten prometheus.Counter
	fetchErrors    prometheus.Counter
	skippedVideos  prometheus.Counter
)

func InitPrometheusMetrics() {
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viewtrack",
			Name:      "poll_cycles_total",
			Help:      "Total number of completed poll cycles.",
		},
		[]string{"status"},
	)
	samplesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewtrack",
			Name:      "samples_written_total",
			Help:      "Total number of samples written to the time series.",
		},
	)
	fetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewtrack",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed statistics fetches.",
		},
	)
	skippedVideos = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewtrack",
			Name:      "skipped_videos_total",
			Help:      "Total number of video IDs the provider did not resolve.",
		},
	)
	prometheus.MustRegister(cyclesTotal, samplesWritten, fetchErrors, skippedVideos)
}
