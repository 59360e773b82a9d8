package event

import (
	"reflect"
	"slices"
)

// ListenerID identifies a subscription so it can be removed later.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn any
}

// Bus is the per-tick event queue. Publish dispatches immediately; Enqueue
// defers the event until Flush, which the ECS calls once per tick after all
// systems have run. Listeners of a type are called in subscription order.
// Accessed only from the update loop goroutine, no locks.
type Bus struct {
	handlers map[reflect.Type][]listener
	queue    map[reflect.Type][]func()
	order    []reflect.Type
	owners   map[ListenerID]reflect.Type
	nextID   ListenerID
	pending  int
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]listener),
		queue:    make(map[reflect.Type][]func()),
		owners:   make(map[ListenerID]reflect.Type),
	}
}

// register records t's position in the flush order on first sight.
func (b *Bus) register(t reflect.Type) {
	if _, ok := b.handlers[t]; ok {
		return
	}
	b.handlers[t] = nil
	b.order = append(b.order, t)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) ListenerID {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.register(t)
	b.nextID++
	id := b.nextID
	// Copy on write: a dispatch in progress keeps iterating its own slice.
	b.handlers[t] = append(slices.Clip(b.handlers[t]), listener{id: id, fn: fn})
	b.owners[id] = t
	return id
}

// Unsubscribe removes a handler registered with Subscribe.
func (b *Bus) Unsubscribe(id ListenerID) bool {
	t, ok := b.owners[id]
	if !ok {
		return false
	}
	delete(b.owners, id)
	b.handlers[t] = slices.DeleteFunc(slices.Clone(b.handlers[t]), func(l listener) bool {
		return l.id == id
	})
	return true
}

// Publish delivers event to every handler of T right away.
func Publish[T any](b *Bus, event T) {
	for _, l := range b.handlers[reflect.TypeOf((*T)(nil)).Elem()] {
		l.fn.(func(T))(event)
	}
}

// Enqueue queues event for the next Flush.
func Enqueue[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.register(t)
	b.queue[t] = append(b.queue[t], func() { Publish(b, event) })
	b.pending++
}

// Flush dispatches queued events grouped by type, types in the order they
// were first registered, events of one type in the order they were queued.
// Events queued by handlers during Flush wait for the next Flush.
func (b *Bus) Flush() int {
	if b.pending == 0 {
		return 0
	}
	batch := make(map[reflect.Type][]func(), len(b.queue))
	for t, q := range b.queue {
		if len(q) > 0 {
			batch[t] = q
			b.queue[t] = nil
		}
	}
	b.pending = 0

	n := 0
	for _, t := range b.order {
		for _, dispatch := range batch[t] {
			dispatch()
			n++
		}
	}
	return n
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int { return b.pending }
