package engine

import "encoding/json"

// ColorQueue is a FIFO of passenger color indices backed by a ring buffer.
// Index 0 is the passenger next to board; insertion order is arrival order.
// Head removal is O(1), which matters because station pickups pop the head
// repeatedly during a head-streak match.
type ColorQueue struct {
	buf  []int
	head int
	n    int
}

// NewColorQueue creates a queue pre-filled with the given colors in order
func NewColorQueue(colors ...int) *ColorQueue {
	q := &ColorQueue{}
	for _, c := range colors {
		q.Push(c)
	}
	return q
}

// Len returns the number of waiting passengers
func (q *ColorQueue) Len() int {
	if q == nil {
		return 0
	}
	return q.n
}

// Peek returns the head color without removing it. The second return is false
// for an empty queue.
func (q *ColorQueue) Peek() (int, bool) {
	if q == nil || q.n == 0 {
		return 0, false
	}
	return q.buf[q.head], true
}

// Pop removes and returns the head color
func (q *ColorQueue) Pop() (int, bool) {
	if q == nil || q.n == 0 {
		return 0, false
	}
	c := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return c, true
}

// Push appends a color at the tail
func (q *ColorQueue) Push(color int) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = color
	q.n++
}

func (q *ColorQueue) grow() {
	size := len(q.buf) * 2
	if size == 0 {
		size = 8
	}
	next := make([]int, size)
	for i := 0; i < q.n; i++ {
		next[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = next
	q.head = 0
}

// Colors returns the queued colors in FIFO order as a fresh slice
func (q *ColorQueue) Colors() []int {
	if q == nil || q.n == 0 {
		return []int{}
	}
	out := make([]int, q.n)
	for i := 0; i < q.n; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

// MarshalJSON encodes the queue as a plain JSON array in FIFO order
func (q *ColorQueue) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Colors())
}

// UnmarshalJSON decodes a plain JSON array into the queue
func (q *ColorQueue) UnmarshalJSON(data []byte) error {
	var colors []int
	if err := json.Unmarshal(data, &colors); err != nil {
		return err
	}
	*q = *NewColorQueue(colors...)
	return nil
}
