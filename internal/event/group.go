package event

import "slices"

// Group tracks subscriptions so they can be released together.
// The zero value is ready to use.
type Group struct {
	subs []*Subscription
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{}
}

// Attach subscribes h to ev and records the subscription in g.
func Attach[T any](g *Group, ev *Event[T], h Handler[T]) *Subscription {
	sub := ev.Subscribe(h)
	g.Add(sub)
	return sub
}

// Add records an existing subscription.
func (g *Group) Add(s *Subscription) {
	if s != nil {
		g.subs = append(g.subs, s)
	}
}

// Detach cancels one subscription held by the group.
func (g *Group) Detach(s *Subscription) error {
	i := slices.Index(g.subs, s)
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	g.subs = slices.Delete(g.subs, i, i+1)
	return s.Cancel()
}

// UnsubscribeAll cancels every subscription in reverse order of
// registration and empties the group.
func (g *Group) UnsubscribeAll() {
	for i := len(g.subs) - 1; i >= 0; i-- {
		_ = g.subs[i].Cancel()
	}
	g.subs = nil
}

// Len returns the number of tracked subscriptions.
func (g *Group) Len() int {
	return len(g.subs)
}
