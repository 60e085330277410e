// Package alert serialises error events from the feed and round-up flows
// into a one-at-a-time, user-dismissible alert stream.
package alert

import "sync"

// Queue is an ordered set of pending error messages. Pushes from any
// goroutine collapse duplicates; the active alert is always the oldest
// pending message. Dismissing the active alert reveals the next one, so
// no distinct message is ever dropped.
type Queue struct {
	mu       sync.Mutex
	pending  []string
	member   map[string]struct{}
	onChange func()
}

// NewQueue creates an empty queue. onChange, when non-nil, is invoked
// after every mutation so a presenter can re-read Active; it must not
// call back into the queue.
func NewQueue(onChange func()) *Queue {
	return &Queue{
		member:   make(map[string]struct{}),
		onChange: onChange,
	}
}

// Push enqueues message unless an identical one is already pending.
func (q *Queue) Push(message string) {
	q.mu.Lock()
	if _, ok := q.member[message]; ok {
		q.mu.Unlock()
		return
	}
	q.member[message] = struct{}{}
	q.pending = append(q.pending, message)
	q.mu.Unlock()
	q.notify()
}

// Dismiss removes the shown message. The next pending message, if any,
// becomes active.
func (q *Queue) Dismiss(shown string) {
	q.mu.Lock()
	if _, ok := q.member[shown]; !ok {
		q.mu.Unlock()
		return
	}
	delete(q.member, shown)
	for i, m := range q.pending {
		if m == shown {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	q.mu.Unlock()
	q.notify()
}

// Active returns the message currently due on screen, if any.
func (q *Queue) Active() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return "", false
	}
	return q.pending[0], true
}

// Len returns the number of pending messages, the active one included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) notify() {
	if q.onChange != nil {
		q.onChange()
	}
}
