package event

import "fmt"

// A Phase groups the callbacks of a PhasedEvent. Phases run in the order
// Priority, Default, Fallback.
type Phase int

// The phases of a PhasedEvent.
const (
	PhasePriority Phase = iota
	PhaseDefault
	PhaseFallback
	numPhases
)

func (p Phase) String() string {
	switch p {
	case PhasePriority:
		return "priority"
	case PhaseDefault:
		return "default"
	case PhaseFallback:
		return "fallback"
	default:
		panic(fmt.Sprintf("unknown phase %d", int(p)))
	}
}

type resultKind int

const (
	resultPass resultKind = iota
	resultValue
	resultEmpty
)

// A Result is the answer of one callback of a PhasedEvent.
type Result[R any] struct {
	kind  resultKind
	value R
}

// Pass lets the next callback answer.
func Pass[R any]() Result[R] {
	return Result[R]{kind: resultPass}
}

// Value answers with v and stops the event.
func Value[R any](v R) Result[R] {
	return Result[R]{kind: resultValue, value: v}
}

// Empty answers "nothing" and stops the event.
func Empty[R any]() Result[R] {
	return Result[R]{kind: resultEmpty}
}

// IsPass reports whether the result defers to the next callback.
func (r Result[R]) IsPass() bool {
	return r.kind == resultPass
}

// Get returns the answered value. ok is false for Pass and Empty.
func (r Result[R]) Get() (v R, ok bool) {
	return r.value, r.kind == resultValue
}

// A PhasedEvent asks its callbacks in phase order, then registration order,
// until one of them does not pass.
type PhasedEvent[T, R any] struct {
	callbacks [numPhases][]func(T) Result[R]
}

// NewPhased creates an empty PhasedEvent.
func NewPhased[T, R any]() *PhasedEvent[T, R] {
	return &PhasedEvent[T, R]{}
}

// Register adds a callback to a phase.
func (e *PhasedEvent[T, R]) Register(
	phase Phase,
	callback func(T) Result[R],
) {
	if phase < 0 || phase >= numPhases {
		panic(fmt.Sprintf("unknown phase %d", int(phase)))
	}

	e.callbacks[phase] = append(e.callbacks[phase], callback)
}

// Invoke returns the first non-pass result. If every callback passes, the
// result is Pass.
func (e *PhasedEvent[T, R]) Invoke(v T) Result[R] {
	for _, phase := range e.callbacks {
		for _, cb := range phase {
			res := cb(v)
			if !res.IsPass() {
				return res
			}
		}
	}

	return Pass[R]()
}
