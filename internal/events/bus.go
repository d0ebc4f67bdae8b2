package events

import (
	"github.com/kelindar/event"
)

// Bus wraps the kelindar/event dispatcher for in-process event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(FileUploadedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches by concrete type, so fan out through a
	// type switch to call the generic Publish with the right type.
	switch e := ev.(type) {
	case WorkerStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case FileDownloadedEvent:
		event.Publish(b.dispatcher, e)
	case FileUploadedEvent:
		event.Publish(b.dispatcher, e)
	case UploadFailedEvent:
		event.Publish(b.dispatcher, e)
	case PartRecoveredEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e FileUploadedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(WorkerStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FileDownloadedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FileUploadedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(UploadFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PartRecoveredEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
