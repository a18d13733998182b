package unimailer

import (
	"context"
)

// Sender is the dispatch surface of a Mailer, for callers that want to
// substitute it in tests.
type Sender interface {
	// Send delivers the composed message and reports success.
	Send(ctx context.Context) bool

	// Errors returns the diagnostics of the most recent Send.
	Errors() []string
}

var _ Sender = (*Mailer)(nil)
