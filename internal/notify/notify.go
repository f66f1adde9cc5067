// Package notify defines the outbound notification capability consumed
// by the auth handlers. Handlers only ever see the Mailer interface;
// the production implementation hands messages to the message broker
// and tests substitute an in-memory recorder.
package notify

import "context"

// Mailer dispatches a notification to a recipient address. Send is
// allowed to be asynchronous: a nil error means the message was
// accepted for delivery, not that it arrived.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
