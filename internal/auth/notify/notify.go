// Package notify delivers one-time login codes out of band. Delivery is
// deliberately decoupled from token issuance: a login that cannot reach
// the mail relay still succeeds, and the failure surfaces in logs only.
package notify

import "context"

// Dispatcher sends a message to a destination address. Implementations
// must be safe for concurrent use.
type Dispatcher interface {
	Send(ctx context.Context, destination, subject, body string) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, destination, subject, body string) error

func (f DispatcherFunc) Send(ctx context.Context, destination, subject, body string) error {
	return f(ctx, destination, subject, body)
}
