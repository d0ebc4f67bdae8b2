package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan FileUploadedEvent, 1)

	unsub := bus.Subscribe(func(e FileUploadedEvent) {
		received <- e
	})
	defer unsub()

	event := FileUploadedEvent{
		Path:      "/download/room/clip.mp4",
		Bytes:     1024,
		Engine:    "botapi",
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.Path != event.Path {
		t.Errorf("Expected path %s, got %s", event.Path, got.Path)
	}
	if got.Engine != "botapi" {
		t.Errorf("Expected engine botapi, got %s", got.Engine)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan WorkerStateChangedEvent, 1)
	received2 := make(chan WorkerStateChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e WorkerStateChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e WorkerStateChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(WorkerStateChangedEvent{
		Worker:   "collector",
		OldState: "running",
		NewState: "error",
	})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan PartRecoveredEvent, 1)

	unsub := bus.Subscribe(func(e PartRecoveredEvent) {
		received <- e
	})
	unsub()

	bus.Publish(PartRecoveredEvent{Source: "/download/a.part"})

	select {
	case <-received:
		t.Error("received event after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_UnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(s string) {})
	if unsub == nil {
		t.Fatal("Subscribe returned nil unsubscribe func")
	}
	unsub()
}
