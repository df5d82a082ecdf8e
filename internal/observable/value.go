package observable

// Value holds a single value and notifies subscribers on every Set.
//
// A Value is not safe for concurrent use; it is owned by whichever goroutine
// drives the model (CLI command, TUI update loop).
type Value[T any] struct {
	v       T
	defined bool
	subs    subscribers[T]
}

// NewValue returns a defined Value holding v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v, defined: true}
}

// Undefined returns a Value that holds the zero value and reports Defined() == false
// until the first Set.
func Undefined[T any]() *Value[T] {
	return &Value[T]{}
}

func (o *Value[T]) Get() T {
	return o.v
}

func (o *Value[T]) Defined() bool {
	return o.defined
}

func (o *Value[T]) Set(v T) {
	o.v = v
	o.defined = true
	o.subs.notify(v)
}

// Clear resets the value to zero and marks it undefined. Subscribers are notified
// with the zero value.
func (o *Value[T]) Clear() {
	var zero T
	o.v = zero
	o.defined = false
	o.subs.notify(zero)
}

// Subscribe registers fn and returns a func that removes it.
func (o *Value[T]) Subscribe(fn func(T)) func() {
	return o.subs.add(fn)
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

type subscribers[T any] struct {
	next int
	list []subscriber[T]
}

func (s *subscribers[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	s.next++
	id := s.next
	s.list = append(s.list, subscriber[T]{id: id, fn: fn})
	return func() {
		for i := range s.list {
			if s.list[i].id == id {
				s.list = append(s.list[:i], s.list[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers[T]) notify(v T) {
	// Copy so a subscriber may unsubscribe itself while being notified.
	list := append([]subscriber[T](nil), s.list...)
	for _, sub := range list {
		sub.fn(v)
	}
}
