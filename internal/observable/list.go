package observable

import "errors"

var ErrIndexOutOfRange = errors.New("index out of range")

// List is an ordered sequence that notifies subscribers with the full
// sequence after every mutation.
type List[T any] struct {
	items []T
	subs  subscribers[[]T]
}

func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: append([]T(nil), items...)}
}

// Items returns a copy of the current sequence.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

func (l *List[T]) Len() int {
	return len(l.items)
}

func (l *List[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// Replace swaps the whole sequence.
func (l *List[T]) Replace(items []T) {
	l.items = append([]T(nil), items...)
	l.changed()
}

func (l *List[T]) Append(v T) {
	l.items = append(l.items, v)
	l.changed()
}

// Insert places v at index i (0 <= i <= Len()).
func (l *List[T]) Insert(i int, v T) error {
	if i < 0 || i > len(l.items) {
		return ErrIndexOutOfRange
	}
	l.items = append(l.items, v)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	l.changed()
	return nil
}

func (l *List[T]) RemoveAt(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, ErrIndexOutOfRange
	}
	v := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.changed()
	return v, nil
}

// RemoveAll empties the list.
func (l *List[T]) RemoveAll() {
	l.items = nil
	l.changed()
}

// Move relocates the element at from so that it ends up at index to.
func (l *List[T]) Move(from, to int) error {
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	v := l.items[from]
	next := make([]T, 0, n)
	next = append(next, l.items[:from]...)
	next = append(next, l.items[from+1:]...)
	next = append(next[:to], append([]T{v}, next[to:]...)...)
	l.items = next
	l.changed()
	return nil
}

// Subscribe registers fn and returns a func that removes it.
func (l *List[T]) Subscribe(fn func([]T)) func() {
	return l.subs.add(fn)
}

func (l *List[T]) changed() {
	l.subs.notify(l.Items())
}
