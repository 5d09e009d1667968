// Package bus provides a synchronous publish/subscribe primitive.
//
// Values are delivered to every subscriber attached at publish time, in
// publish order. Nothing is buffered or replayed for late subscribers.
package bus

import "sync"

// Bus fans values of type T out to subscribers.
type Bus[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	subs    map[uint64]func(T)
	order   []uint64
	publish sync.Mutex // serializes deliveries so every subscriber sees the same order
}

// New creates an empty Bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[uint64]func(T))}
}

// Subscribe attaches fn and returns a function that detaches it.
// The returned function is safe to call more than once.
func (b *Bus[T]) Subscribe(fn func(T)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Publish delivers v to all current subscribers, in subscription order.
// Handlers run on the caller's goroutine and must not publish on the same Bus.
func (b *Bus[T]) Publish(v T) {
	b.publish.Lock()
	defer b.publish.Unlock()

	for _, fn := range b.snapshot() {
		fn(v)
	}
}

// Len returns the number of attached subscribers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

func (b *Bus[T]) snapshot() []func(T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fns := make([]func(T), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.subs[id])
	}
	return fns
}
