// Package queue provides a generic FIFO with a head cursor, so consuming from the
// front never shifts the backing slice.
package queue

import (
	"sync"
)

// compactThreshold is the number of consumed slots after which the backing slice is
// compacted on the next Pop.
const compactThreshold = 64

// Queue is a generic thread-safe FIFO.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// Push appends items to the back of the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Front returns a pointer to the first item so callers can update it in place.
// The pointer is valid until the next Push, Pop or GetAndEmpty, any of which may
// move the backing slice.
func (q *Queue[T]) Front() (*T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.items) {
		return nil, false
	}
	return &q.items[q.head], true
}

// Pop removes and returns the first item. Returns zero value if empty.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if q.head >= len(q.items) {
		return zero
	}
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head >= compactThreshold && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return item
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head >= len(q.items)
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Each calls fn for every queued item, front to back, until fn returns false.
func (q *Queue[T]) Each(fn func(T) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.items[q.head:] {
		if !fn(item) {
			return
		}
	}
}

// GetAndEmpty returns all items and clears the queue.
func (q *Queue[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := make([]T, len(q.items)-q.head)
	copy(result, q.items[q.head:])
	q.items = make([]T, 0, cap(q.items))
	q.head = 0
	return result
}
