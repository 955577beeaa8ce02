package sequence

// Queue is a FIFO buffer backed by a growable ring.
// The zero value is ready to use. It is not safe for concurrent use.
type Queue[T any] struct {
	items []T
	head  int
	size  int
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{items: make([]T, capacity)}
}

func (q *Queue[T]) Len() int { return q.size }

func (q *Queue[T]) IsEmpty() bool { return q.size == 0 }

// Enqueue appends value at the tail.
func (q *Queue[T]) Enqueue(value T) {
	if q.size == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.size)%len(q.items)] = value
	q.size++
}

// Dequeue removes and returns the head value.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero // avoid memory leak
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return v, true
}

func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

// Drain dequeues every value in FIFO order and passes it to fn.
// Values enqueued by fn are left for the next drain.
func (q *Queue[T]) Drain(fn func(T)) {
	n := q.size
	for i := 0; i < n; i++ {
		v, _ := q.Dequeue()
		fn(v)
	}
}

// RemoveFunc drops every value for which match returns true, keeping order.
// It returns the number of removed values.
func (q *Queue[T]) RemoveFunc(match func(T) bool) int {
	n := q.size
	removed := 0
	for i := 0; i < n; i++ {
		v, _ := q.Dequeue()
		if match(v) {
			removed++
			continue
		}
		q.Enqueue(v)
	}
	return removed
}

func (q *Queue[T]) Clear() {
	var zero T
	for i := range q.items {
		q.items[i] = zero
	}
	q.head, q.size = 0, 0
}

func (q *Queue[T]) grow() {
	capacity := len(q.items) * 2
	if capacity == 0 {
		capacity = 8
	}
	items := make([]T, capacity)
	for i := 0; i < q.size; i++ {
		items[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = items
	q.head = 0
}
