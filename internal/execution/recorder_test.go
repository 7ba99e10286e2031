package execution

import (
	"sync"

	"vmx/internal/domain"
)

// EventKind names a listener callback
type EventKind string

const (
	EventStarted  EventKind = "started"
	EventFailed   EventKind = "failed"
	EventFinished EventKind = "finished"
	EventIgnored  EventKind = "ignored"
)

// Event is one recorded listener callback
type Event struct {
	Kind EventKind
	Name string
	Err  error
}

// Recorder keeps every event it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Started(d domain.Descriptor) {
	r.add(Event{Kind: EventStarted, Name: d.DisplayName})
}

func (r *Recorder) Failed(d domain.Descriptor, err error) {
	r.add(Event{Kind: EventFailed, Name: d.DisplayName, Err: err})
}

func (r *Recorder) Finished(d domain.Descriptor) {
	r.add(Event{Kind: EventFinished, Name: d.DisplayName})
}

func (r *Recorder) Ignored(d domain.Descriptor) {
	r.add(Event{Kind: EventIgnored, Name: d.DisplayName})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the display names recorded for one kind of event.
func (r *Recorder) Names(kind EventKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.events {
		if e.Kind == kind {
			names = append(names, e.Name)
		}
	}
	return names
}
