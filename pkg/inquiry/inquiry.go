// Package inquiry validates an inquiry, mails it to the service administrator,
// sends a confirmation back to the submitter and answers API Gateway.
package inquiry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"sync/atomic"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/UKHomeOffice/inquirymail/internal/mailer"
	"github.com/UKHomeOffice/inquirymail/internal/mailtemplate"
	"github.com/UKHomeOffice/inquirymail/internal/settings"
	"github.com/UKHomeOffice/inquirymail/internal/validate"
)

// Response bodies
const (
	SuccessMessage = "process is successful."
	FailureMessage = "process is terminated abnormally..."
)

// MailerFunc returns a mail sender for a region
type MailerFunc func(region string) mailer.Sender

// Handler represents the handler type
type Handler struct {
	provider settings.Provider
	mailer   MailerFunc
	template string
	logger   *slog.Logger

	// origin is the last CORS origin resolved, for failures raised before
	// the configuration is read
	origin atomic.Value
}

// Option configures a Handler
type Option func(*Handler)

// WithLogger sets the logger, slog.Default is used otherwise
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithTemplate sets the confirmation template, the built in one is used otherwise
func WithTemplate(tmpl string) Option {
	return func(h *Handler) {
		h.template = tmpl
	}
}

// NewHandler returns a new Handler
func NewHandler(p settings.Provider, m MailerFunc, opts ...Option) *Handler {
	h := &Handler{
		provider: p,
		mailer:   m,
		template: mailtemplate.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// invocation carries what one request learned so far
type invocation struct {
	logger *slog.Logger
	cfg    *settings.Configuration
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

// Handle deals with the incoming event. The returned error is always nil:
// failures become a 500 response and are only described in the log.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (res events.APIGatewayProxyResponse, err error) {

	inv := &invocation{logger: h.logger.With(slog.String("request_id", requestID(ctx)))}
	inv.logger.DebugContext(ctx, "received event", slog.String("event", string(event)))

	defer func() {
		if r := recover(); r != nil {
			res = h.failure(ctx, inv, &UnexpectedError{Value: r})
			err = nil
		}
	}()

	if err := h.process(ctx, inv, event); err != nil {
		return h.failure(ctx, inv, err), nil
	}
	return h.respond(http.StatusOK, SuccessMessage, inv.cfg.CORSAllowOrigin), nil
}

// process validates the inquiry, then notifies the administrator before
// confirming to the submitter
func (h *Handler) process(ctx context.Context, inv *invocation, event []byte) error {

	r, err := Normalize(event)
	if err != nil {
		return err
	}

	inq, err := validate.Validate(r)
	if err != nil {
		return err
	}

	cfg, err := h.provider.Resolve(ctx)
	if err != nil {
		return err
	}
	inv.cfg = cfg
	h.origin.Store(cfg.CORSAllowOrigin)

	sender := h.mailer(cfg.Region)

	adminID, err := sender.Send(ctx, mailer.Message{
		Source:  cfg.AdminMail,
		ReplyTo: (&mail.Address{Name: inq.Name, Address: inq.Email}).String(),
		To:      cfg.AdminMail,
		Subject: inq.Title,
		Body:    inq.Message,
	})
	if err != nil {
		return fmt.Errorf("administrator notification: %w", err)
	}
	inv.logger.InfoContext(ctx, "administrator notified", slog.String("message_id", adminID))

	body := mailtemplate.Render(h.template, mailtemplate.Fields{
		ServiceName: cfg.ServiceName,
		SenderName:  inq.Name,
		SenderMail:  inq.Email,
		Subject:     inq.Title,
		Body:        inq.Message,
		SiteURL:     cfg.ServiceURL,
		AdminMail:   cfg.AdminMail,
	}.Values())

	replyID, err := sender.Send(ctx, mailer.Message{
		Source:  cfg.AdminMail,
		ReplyTo: cfg.AdminMail,
		To:      inq.Email,
		Subject: cfg.ReplyTitle,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("confirmation reply: %w", err)
	}
	inv.logger.InfoContext(ctx, "confirmation sent", slog.String("message_id", replyID))

	return nil
}

// failure logs err and builds the generic error response
func (h *Handler) failure(ctx context.Context, inv *invocation, err error) events.APIGatewayProxyResponse {

	kind := Kind(err)
	attrs := []any{slog.String("kind", kind), slog.String("error", err.Error())}
	var verr *validate.Error
	if errors.As(err, &verr) {
		attrs = append(attrs, slog.Any("fields", verr.Fields))
	}
	inv.logger.ErrorContext(ctx, "inquiry failed", attrs...)

	return h.respond(http.StatusInternalServerError, FailureMessage, h.failureOrigin(ctx, inv, kind))
}

// failureOrigin picks the CORS origin of an error response. A failure before
// the configuration was read reuses the origin of an earlier invocation, and
// only looks the configuration up when there is none yet. Nothing is looked
// up after a configuration failure or a recovered panic.
func (h *Handler) failureOrigin(ctx context.Context, inv *invocation, kind string) (origin string) {

	if inv.cfg != nil {
		return inv.cfg.CORSAllowOrigin
	}
	if o, ok := h.origin.Load().(string); ok {
		return o
	}
	if kind == KindConfiguration || kind == KindUnexpected {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			inv.logger.ErrorContext(ctx, "could not resolve CORS origin", slog.Any("panic", r))
			origin = ""
		}
	}()

	cfg, err := h.provider.Resolve(ctx)
	if err != nil {
		return ""
	}
	h.origin.Store(cfg.CORSAllowOrigin)
	return cfg.CORSAllowOrigin
}

// respond builds a proxy response with the CORS headers. The body is a JSON
// encoded string.
func (h *Handler) respond(status int, msg, origin string) events.APIGatewayProxyResponse {

	headers := map[string]string{
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "OPTIONS,POST",
	}
	if origin != "" {
		headers["Access-Control-Allow-Origin"] = origin
	}

	body, _ := json.Marshal(msg)

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
