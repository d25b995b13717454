package wifiinfo

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// EventEmitter delivers named events to the host application. It is the
// boundary the observer talks to; implementations must not block for long.
type EventEmitter interface {
	Emit(event string, payload any)
}

type listener struct {
	id int
	fn func(any)
}

// ListenerRegistry is the in-process EventEmitter. Listeners are called
// synchronously, in registration order, on the emitting goroutine.
// Once deactivated every Emit is dropped.
type ListenerRegistry struct {
	mu        sync.RWMutex
	listeners map[string][]listener
	nextID    int
	inactive  bool
	log       logrus.FieldLogger
}

func NewListenerRegistry(log logrus.FieldLogger) *ListenerRegistry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ListenerRegistry{
		listeners: map[string][]listener{},
		log:       log.WithField("component", "emitter"),
	}
}

// AddListener registers fn for event and returns a func removing it.
// Calling the returned func more than once is harmless.
func (t *ListenerRegistry) AddListener(event string, fn func(any)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.listeners[event] = append(t.listeners[event], listener{id, fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		ls := t.listeners[event]
		for i, l := range ls {
			if l.id == id {
				t.listeners[event] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(t.listeners[event]) == 0 {
			delete(t.listeners, event)
		}
	}
}

func (t *ListenerRegistry) ListenerCount(event string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.listeners[event])
}

func (t *ListenerRegistry) Emit(event string, payload any) {
	t.mu.RLock()
	if t.inactive {
		t.mu.RUnlock()
		t.log.WithField("event", event).Debug("emitter inactive, dropping event")
		return
	}
	ls := make([]listener, len(t.listeners[event]))
	copy(ls, t.listeners[event])
	t.mu.RUnlock()

	for _, l := range ls {
		l.fn(payload)
	}
}

// Deactivate drops all future events, used when the host goes away.
func (t *ListenerRegistry) Deactivate() {
	t.mu.Lock()
	t.inactive = true
	t.mu.Unlock()
}
