package domain

import (
	"sync"
	"time"
)

type Event interface {
	Type() string
	PublishedAt() time.Time
}

// Aggregate collects the events raised by a domain object until its storage
// hands them to the message bus.
type Aggregate struct {
	mu     sync.Mutex
	events []Event
}

func (a *Aggregate) PopEvents() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	events := a.events
	a.events = make([]Event, 0)
	return events
}

func (a *Aggregate) PushEvent(e Event) {
	a.mu.Lock()
	a.events = append(a.events, e)
	a.mu.Unlock()
}

// PendingEvents reports how many events wait to be collected.
func (a *Aggregate) PendingEvents() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}
