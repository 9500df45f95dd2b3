package ring

// Ring is a growable FIFO buffer. The zero value is an empty ring.
type Ring[T any] struct {
	buf []T
	// real head is head-1, like this so nil ring is valid
	head   int
	tail   int
	length int
}

func MakeRing[T any](capacity int) Ring[T] {
	return Ring[T]{
		buf: make([]T, capacity),
	}
}

func NewRing[T any](capacity int) *Ring[T] {
	r := MakeRing[T](capacity)
	return &r
}

func (r *Ring[T]) grow() {
	size := len(r.buf) * 2
	if size == 0 {
		size = 2
	}

	buf := make([]T, size)
	copy(buf, r.buf[r.head:])
	copy(buf[len(r.buf[r.head:]):], r.buf[:r.head])
	r.head = 0
	r.tail = r.length
	r.buf = buf
}

func (r *Ring[T]) PushBack(value T) {
	if r.length == len(r.buf) {
		r.grow()
	}
	r.length++

	r.buf[r.tail] = value
	r.tail++
	if r.tail == len(r.buf) {
		r.tail = 0
	}
}

func (r *Ring[T]) PopFront() (T, bool) {
	if r.length == 0 {
		return *new(T), false
	}

	front := r.buf[r.head]
	// drop the reference so popped values can be collected
	r.buf[r.head] = *new(T)
	r.length--

	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
	return front, true
}

func (r *Ring[T]) PeekFront() (T, bool) {
	if r.length == 0 {
		return *new(T), false
	}
	return r.buf[r.head], true
}

func (r *Ring[T]) Length() int {
	return r.length
}

func (r *Ring[T]) Capacity() int {
	return len(r.buf)
}

func (r *Ring[T]) Get(n int) T {
	if n >= r.length {
		panic("index out of range")
	}
	ptr := r.head + n
	if ptr >= len(r.buf) {
		ptr -= len(r.buf)
	}
	return r.buf[ptr]
}
