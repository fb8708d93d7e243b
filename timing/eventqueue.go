package timing

import (
	"container/heap"
	"sync"
)

// EventQueue is a thread safe queue of events ordered by time. Events of the
// same tick come out in the order they were pushed.
type EventQueue struct {
	sync.Mutex
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := new(EventQueue)
	heap.Init(&q.events)

	return q
}

// Push adds an event to the queue.
func (q *EventQueue) Push(evt Event) {
	q.Lock()
	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.nextSeq})
	q.nextSeq++
	q.Unlock()
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() Event {
	q.Lock()
	e := heap.Pop(&q.events).(queuedEvent)
	q.Unlock()

	return e.evt
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() Event {
	q.Lock()
	e := q.events[0]
	q.Unlock()

	return e.evt
}

// Len returns the number of events in the queue.
func (q *EventQueue) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()

	return l
}

type queuedEvent struct {
	evt Event
	seq uint64
}

type eventHeap []queuedEvent

func (h eventHeap) Len() int {
	return len(h)
}

func (h eventHeap) Less(i, j int) bool {
	if h[i].evt.Time() != h[j].evt.Time() {
		return h[i].evt.Time() < h[j].evt.Time()
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[0 : n-1]

	return e
}
