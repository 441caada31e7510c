package event

import "errors"

// Sentinel errors for events.
var (
	// ErrSubscriptionNotFound is returned when unsubscribing a subscription
	// that does not belong to the event or group, or was already cancelled.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("handler cannot be nil")
)
