// Package mailer hands single messages over to a mail service.
package mailer

import (
	"context"
	"fmt"
)

// DefaultCharset is used when a Message does not name one
const DefaultCharset = "utf-8"

// Message is a single plain text mail with one recipient
type Message struct {
	Source  string
	ReplyTo string
	To      string
	Subject string
	Body    string
	Charset string
}

func (m Message) charset() string {
	if m.Charset == "" {
		return DefaultCharset
	}
	return m.Charset
}

// Sender is an abstraction for a mail service
type Sender interface {
	Send(ctx context.Context, m Message) (string, error)
}

// SendFailure means a message was not accepted by the mail service
type SendFailure struct {
	To     string
	Reason string
	Err    error
}

func (e *SendFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not send mail to %s: %s: %v", e.To, e.Reason, e.Err)
	}
	return fmt.Sprintf("could not send mail to %s: %s", e.To, e.Reason)
}

func (e *SendFailure) Unwrap() error {
	return e.Err
}
