// Package event provides typed callback registration. Host boundaries such as
// world ticks and block breaks are Events; lookups that several plugins may
// answer are PhasedEvents.
package event

// An Event delivers a value to every registered listener, in registration
// order.
type Event[T any] struct {
	listeners []func(T)
}

// New creates an Event with no listeners.
func New[T any]() *Event[T] {
	return &Event[T]{}
}

// Register adds a listener.
func (e *Event[T]) Register(listener func(T)) {
	e.listeners = append(e.listeners, listener)
}

// NumListeners returns the number of registered listeners.
func (e *Event[T]) NumListeners() int {
	return len(e.listeners)
}

// Fire synchronously invokes all the listeners with v.
func (e *Event[T]) Fire(v T) {
	for _, l := range e.listeners {
		l(v)
	}
}
