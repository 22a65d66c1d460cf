package simulation

// Window keeps the newest size items in insertion order.
type Window[T any] struct {
	size  int
	items []T
}

// NewWindow returns an empty window holding at most size items.
func NewWindow[T any](size int) *Window[T] {
	size = max(size, 1)
	return &Window[T]{size: size, items: make([]T, 0, size)}
}

// Push appends v and evicts the oldest item when full.
func (w *Window[T]) Push(v T) {
	if len(w.items) == w.size {
		copy(w.items, w.items[1:])
		w.items = w.items[:w.size-1]
	}
	w.items = append(w.items, v)
}

// Items returns a copy, oldest first.
func (w *Window[T]) Items() []T {
	return append([]T(nil), w.items...)
}

// Last returns the newest item.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	return w.items[len(w.items)-1], true
}

// Len is the number of items held.
func (w *Window[T]) Len() int { return len(w.items) }

// Reset drops all items.
func (w *Window[T]) Reset() { w.items = w.items[:0] }
