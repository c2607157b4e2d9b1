package mailer

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
)

// SESClient is the part of the SES API used here (helpful for testing)
type SESClient interface {
	SendEmailWithContext(aws.Context, *ses.SendEmailInput, ...request.Option) (*ses.SendEmailOutput, error)
}

// SES sends messages through Amazon SES
type SES struct {
	client SESClient
}

// NewSES returns a new SES sender
func NewSES(c SESClient) *SES {
	return &SES{client: c}
}

// Send makes one SendEmail call and returns the message id SES assigned.
// A response without an id counts as a failure.
func (s *SES) Send(ctx context.Context, m Message) (string, error) {

	cs := aws.String(m.charset())

	input := &ses.SendEmailInput{
		Source: aws.String(m.Source),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(m.To)},
		},
		ReplyToAddresses: []*string{aws.String(m.ReplyTo)},
		Message: &ses.Message{
			Subject: &ses.Content{Data: aws.String(m.Subject), Charset: cs},
			Body: &ses.Body{
				Text: &ses.Content{Data: aws.String(m.Body), Charset: cs},
			},
		},
	}

	out, err := s.client.SendEmailWithContext(ctx, input)
	if err != nil {
		return "", &SendFailure{To: m.To, Reason: "SendEmail failed", Err: err}
	}

	if out == nil || aws.StringValue(out.MessageId) == "" {
		return "", &SendFailure{To: m.To, Reason: "SES did not return a message id"}
	}

	return aws.StringValue(out.MessageId), nil
}
