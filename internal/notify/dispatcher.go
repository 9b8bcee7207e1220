package notify

import (
	"context"
	"errors"
)

// Mode selects how a dispatch call is acknowledged.
type Mode string

const (
	// FireAndForget acknowledges only that the event was accepted for
	// processing, not that the message was delivered. This is the only mode
	// allowed on the order-creation path.
	FireAndForget Mode = "EVENT"

	// RequestResponse blocks until the function reports the event processed.
	// For callers that need delivery confirmation; never use it on a
	// customer-facing hot path.
	RequestResponse Mode = "REQUEST_RESPONSE"
)

// Dispatcher submits an event to the mail function in the given mode.
// A nil error means "accepted" for FireAndForget and "processed" for
// RequestResponse; anything else is a dispatch failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event, mode Mode) error
}

// ErrModeUnsupported is returned by transports that only implement one mode.
var ErrModeUnsupported = errors.New("notify: dispatch mode not supported by this transport")
