// Package notify sends transactional email to agents and cooperative
// members.
package notify

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NoOp drops every message. Used when SMTP is not configured and in
// tests.
type NoOp struct{}

func (NoOp) Send(ctx context.Context, msg Message) error { return nil }
