package inquiry

import (
	"errors"
	"fmt"

	"github.com/UKHomeOffice/inquirymail/internal/mailer"
	"github.com/UKHomeOffice/inquirymail/internal/settings"
	"github.com/UKHomeOffice/inquirymail/internal/validate"
)

// Kinds of failure, as logged
const (
	KindValidation    = "validation"
	KindConfiguration = "configuration"
	KindSend          = "send"
	KindUnexpected    = "unexpected"
)

// UnexpectedError wraps a failure outside the known kinds, such as a panic
type UnexpectedError struct {
	Value interface{}
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected failure: %v", e.Value)
}

// Kind classifies err for logging
func Kind(err error) string {

	var (
		verr *validate.Error
		eerr *EventError
		cerr *settings.Error
		serr *mailer.SendFailure
	)

	switch {
	case errors.As(err, &verr), errors.As(err, &eerr):
		return KindValidation
	case errors.As(err, &cerr):
		return KindConfiguration
	case errors.As(err, &serr):
		return KindSend
	default:
		return KindUnexpected
	}
}
