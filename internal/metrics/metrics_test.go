package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eusougabrielgadelha/charbot/internal/events"
)

// eventSettle gives the dispatcher's async delivery time to run.
const eventSettle = 100 * time.Millisecond

func TestBindUploadMetrics(t *testing.T) {
	bus := events.New()
	unsub := Bind(bus)
	defer unsub()

	before := testutil.ToFloat64(filesUploaded.WithLabelValues("botapi"))
	beforeBytes := testutil.ToFloat64(bytesUploaded.WithLabelValues("botapi"))

	bus.Publish(events.FileUploadedEvent{Path: "/d/a.mp4", Bytes: 1024, Engine: "botapi"})
	time.Sleep(eventSettle)

	if got := testutil.ToFloat64(filesUploaded.WithLabelValues("botapi")); got != before+1 {
		t.Errorf("files_sent_total = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(bytesUploaded.WithLabelValues("botapi")); got != beforeBytes+1024 {
		t.Errorf("bytes_sent_total = %v, want %v", got, beforeBytes+1024)
	}
}

func TestBindRestartCounter(t *testing.T) {
	bus := events.New()
	unsub := Bind(bus)
	defer unsub()

	before := testutil.ToFloat64(workerRestarts.WithLabelValues("collector"))

	// Initial start is not a restart.
	bus.Publish(events.WorkerStateChangedEvent{Worker: "collector", OldState: "starting", NewState: "running"})
	// Respawn after failure is.
	bus.Publish(events.WorkerStateChangedEvent{Worker: "collector", OldState: "error", NewState: "running"})
	time.Sleep(eventSettle)

	if got := testutil.ToFloat64(workerRestarts.WithLabelValues("collector")); got != before+1 {
		t.Errorf("worker_restarts_total = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(workerState.WithLabelValues("collector")); got != 1 {
		t.Errorf("worker_up = %v, want 1", got)
	}

	bus.Publish(events.WorkerStateChangedEvent{Worker: "collector", OldState: "running", NewState: "error"})
	time.Sleep(eventSettle)

	if got := testutil.ToFloat64(workerState.WithLabelValues("collector")); got != 0 {
		t.Errorf("worker_up after failure = %v, want 0", got)
	}
}

func TestUnsubscribeStopsUpdates(t *testing.T) {
	bus := events.New()
	unsub := Bind(bus)

	before := testutil.ToFloat64(partsRecovered)
	unsub()

	bus.Publish(events.PartRecoveredEvent{Source: "/d/x.part", Result: "/d/x.mp4"})
	time.Sleep(eventSettle)

	if got := testutil.ToFloat64(partsRecovered); got != before {
		t.Errorf("parts_recovered_total = %v, want unchanged %v", got, before)
	}
}
