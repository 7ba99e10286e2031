package execution

import (
	"sync"

	"vmx/internal/domain"
)

// Listener receives per-descriptor events. Every started descriptor gets
// exactly one terminal event: Finished or Ignored. A failure is reported as
// Failed immediately followed by Finished.
type Listener interface {
	Started(d domain.Descriptor)
	Failed(d domain.Descriptor, err error)
	Finished(d domain.Descriptor)
	Ignored(d domain.Descriptor)
}

// Listeners fans events out to each member in order.
type Listeners []Listener

func (ls Listeners) Started(d domain.Descriptor) {
	for _, l := range ls {
		l.Started(d)
	}
}

func (ls Listeners) Failed(d domain.Descriptor, err error) {
	for _, l := range ls {
		l.Failed(d, err)
	}
}

func (ls Listeners) Finished(d domain.Descriptor) {
	for _, l := range ls {
		l.Finished(d)
	}
}

func (ls Listeners) Ignored(d domain.Descriptor) {
	for _, l := range ls {
		l.Ignored(d)
	}
}

// Synchronized serializes calls to l so listeners need no locking of their own.
func Synchronized(l Listener) Listener {
	if _, ok := l.(*syncListener); ok {
		return l
	}
	return &syncListener{l: l}
}

type syncListener struct {
	mu sync.Mutex
	l  Listener
}

func (s *syncListener) Started(d domain.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Started(d)
}

func (s *syncListener) Failed(d domain.Descriptor, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Failed(d, err)
}

func (s *syncListener) Finished(d domain.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Finished(d)
}

func (s *syncListener) Ignored(d domain.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Ignored(d)
}
