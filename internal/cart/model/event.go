package model

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventLoaded   EventKind = "loaded"
	EventAdded    EventKind = "added"
	EventUpdated  EventKind = "updated"
	EventRemoved  EventKind = "removed"
	EventCleared  EventKind = "cleared"
	EventReloaded EventKind = "reloaded"
)

// Event is published to listeners after the durable write succeeded.
// Lines is a copy; listeners may keep it.
type Event struct {
	Kind      EventKind
	ProductID string
	Lines     []CartLine
	Totals    Totals
}

// Listener receives store events synchronously.
type Listener func(Event)
