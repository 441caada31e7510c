package event

import (
	"slices"

	"github.com/google/uuid"
)

// Args is the value passed to every handler during one notification.
type Args[T any] struct {
	// Data is the event payload.
	Data T

	// Native is the input event that triggered the notification, if any.
	Native any

	stopped bool
}

// Stop marks the notification as stopped. Remaining handlers still run.
func (a *Args[T]) Stop() {
	a.stopped = true
}

// Stopped reports whether any handler has called Stop.
func (a *Args[T]) Stopped() bool {
	return a.stopped
}

// Handler receives notifications of an Event[T].
type Handler[T any] func(*Args[T])

// Subscription identifies one registered handler. It is returned by
// Subscribe and is the token used to remove the handler again.
type Subscription struct {
	id     string
	active bool
	cancel func() error
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Active reports whether the handler is still registered.
func (s *Subscription) Active() bool {
	return s != nil && s.active
}

// Cancel removes the handler from its event.
func (s *Subscription) Cancel() error {
	if s == nil || !s.active {
		return ErrSubscriptionNotFound
	}
	return s.cancel()
}

type entry[T any] struct {
	sub     *Subscription
	handler Handler[T]
}

// Event is an ordered list of handlers for payloads of type T.
// The zero value is ready to use.
type Event[T any] struct {
	entries []entry[T]
}

// New creates an event with no handlers.
func New[T any]() *Event[T] {
	return &Event[T]{}
}

// Subscribe appends h to the handler list.
func (e *Event[T]) Subscribe(h Handler[T]) *Subscription {
	if h == nil {
		panic(ErrNilHandler)
	}
	sub := &Subscription{id: uuid.NewString(), active: true}
	sub.cancel = func() error { return e.Unsubscribe(sub) }
	e.entries = append(e.entries, entry[T]{sub: sub, handler: h})
	return sub
}

// Unsubscribe removes the handler registered under s.
func (e *Event[T]) Unsubscribe(s *Subscription) error {
	if s == nil {
		return ErrSubscriptionNotFound
	}
	i := slices.IndexFunc(e.entries, func(en entry[T]) bool { return en.sub == s })
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	e.entries = slices.Delete(e.entries, i, i+1)
	s.active = false
	return nil
}

// Notify calls every handler with data and returns false if any handler
// stopped the notification.
func (e *Event[T]) Notify(data T, native any) bool {
	args := &Args[T]{Data: data, Native: native}
	for _, en := range slices.Clone(e.entries) {
		if !en.sub.active {
			continue
		}
		en.handler(args)
	}
	return !args.stopped
}

// Len returns the number of registered handlers.
func (e *Event[T]) Len() int {
	return len(e.entries)
}

// Clear removes every handler.
func (e *Event[T]) Clear() {
	for _, en := range e.entries {
		en.sub.active = false
	}
	e.entries = nil
}
