// Package metrics exposes Prometheus metrics for the supervisor and both
// workers, fed from the event bus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eusougabrielgadelha/charbot/internal/events"
)

var (
	workerRestarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "charbot",
		Subsystem: "supervisor",
		Name:      "worker_restarts_total",
		Help:      "Worker restarts after unexpected exits",
	}, []string{"worker"})

	workerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "charbot",
		Subsystem: "supervisor",
		Name:      "worker_up",
		Help:      "1 while the worker is running, 0 otherwise",
	}, []string{"worker"})

	filesUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "charbot",
		Subsystem: "uploader",
		Name:      "files_sent_total",
		Help:      "Files successfully sent to Telegram",
	}, []string{"engine"})

	bytesUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "charbot",
		Subsystem: "uploader",
		Name:      "bytes_sent_total",
		Help:      "Bytes successfully sent to Telegram",
	}, []string{"engine"})

	uploadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "charbot",
		Subsystem: "uploader",
		Name:      "failures_total",
		Help:      "Failed upload attempts",
	}, []string{"engine"})

	filesDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "charbot",
		Subsystem: "collector",
		Name:      "files_downloaded_total",
		Help:      "Finished room recordings",
	})

	partsRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "charbot",
		Subsystem: "media",
		Name:      "parts_recovered_total",
		Help:      "Partial downloads finalized into playable files",
	})
)

// Bind subscribes the metric updaters to the event bus. Returns an
// unsubscribe function.
func Bind(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.WorkerStateChangedEvent) {
			if e.NewState == "running" {
				workerState.WithLabelValues(e.Worker).Set(1)
			} else {
				workerState.WithLabelValues(e.Worker).Set(0)
			}
			// error -> running is the respawn transition
			if e.NewState == "running" && e.OldState == "error" {
				workerRestarts.WithLabelValues(e.Worker).Inc()
			}
		}),
		bus.Subscribe(func(e events.FileUploadedEvent) {
			filesUploaded.WithLabelValues(e.Engine).Inc()
			bytesUploaded.WithLabelValues(e.Engine).Add(float64(e.Bytes))
		}),
		bus.Subscribe(func(e events.UploadFailedEvent) {
			uploadFailures.WithLabelValues(e.Engine).Inc()
		}),
		bus.Subscribe(func(e events.FileDownloadedEvent) {
			filesDownloaded.Inc()
		}),
		bus.Subscribe(func(e events.PartRecoveredEvent) {
			partsRecovered.Inc()
		}),
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
