// Package bus provides the in-memory event queue the scheduler drains each tick.
package bus

import "backtest-go/internal/event"

// Queue is an unbounded FIFO of simulation events. A single run is strictly
// sequential, so the queue carries no locking; concurrent runs must each own
// their own instance.
type Queue struct {
	events []event.Event
	head   int
}

// NewQueue allocates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event to the tail.
func (q *Queue) Push(e event.Event) {
	q.events = append(q.events, e)
}

// Pop removes and returns the head event, or (nil, false) when empty.
func (q *Queue) Pop() (event.Event, bool) {
	if q.head >= len(q.events) {
		if q.head > 0 {
			q.events = q.events[:0]
			q.head = 0
		}
		return nil, false
	}
	e := q.events[q.head]
	q.events[q.head] = nil
	q.head++
	return e, true
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	return len(q.events) - q.head
}
