package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/UKHomeOffice/inquirymail/internal/logging"
	"github.com/UKHomeOffice/inquirymail/internal/mailer"
	"github.com/UKHomeOffice/inquirymail/internal/mailtemplate"
	"github.com/UKHomeOffice/inquirymail/internal/settings"
	"github.com/UKHomeOffice/inquirymail/internal/validate"
	"github.com/UKHomeOffice/inquirymail/pkg/inquiry"
)

func (g *Globals) initLogger() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return logging.New(g.LogLevel)
}

// setup reads the runtime settings and opens the configuration source
func (g *Globals) setup() (*settings.Runtime, *session.Session, settings.Provider, error) {

	rt, err := settings.LoadRuntime(g.DotEnv)
	if err != nil {
		return nil, nil, nil, err
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not start AWS session: %w", err)
	}

	p, err := rt.Provider(sess)
	if err != nil {
		return nil, nil, nil, err
	}
	return rt, sess, p, nil
}

func templateFor(flag string, rt *settings.Runtime) (string, error) {
	if flag != "" {
		return mailtemplate.Load(flag)
	}
	return mailtemplate.Load(rt.TemplatePath)
}

// InvokeCmd runs the handler once
type InvokeCmd struct {
	Event    string `arg:"" type:"existingfile" help:"Path to an event JSON file (proxy or direct shape)."`
	DryRun   bool   `name:"dry-run" help:"Log the messages instead of sending them through SES."`
	Template string `name:"template" type:"path" help:"Confirmation template, overrides TEMPLATE_PATH." optional:""`
}

// Run prints the proxy response of one invocation
func (c *InvokeCmd) Run(g *Globals, out io.Writer) error {

	logger := g.initLogger()

	rt, sess, p, err := g.setup()
	if err != nil {
		return err
	}

	tmpl, err := templateFor(c.Template, rt)
	if err != nil {
		return err
	}

	event, err := os.ReadFile(c.Event)
	if err != nil {
		return fmt.Errorf("could not read event: %w", err)
	}

	mf := func(region string) mailer.Sender {
		return mailer.NewSES(ses.New(sess, &aws.Config{Region: aws.String(region)}))
	}
	if c.DryRun {
		d := &mailer.Discard{Logger: logger}
		mf = func(string) mailer.Sender { return d }
	}

	h := inquiry.NewHandler(p, mf, inquiry.WithLogger(logger), inquiry.WithTemplate(tmpl))
	res, err := h.Handle(context.Background(), event)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// RenderCmd prints a confirmation mail
type RenderCmd struct {
	Name     string `name:"name" required:"" help:"Submitter name."`
	Email    string `name:"email" required:"" help:"Submitter mail address."`
	Title    string `name:"title" default:"" help:"Inquiry title."`
	Message  string `name:"message" default:"" help:"Inquiry message."`
	Template string `name:"template" type:"path" help:"Confirmation template, overrides TEMPLATE_PATH." optional:""`
}

// Run renders the template with the resolved service configuration
func (c *RenderCmd) Run(g *Globals, out io.Writer) error {

	rt, _, p, err := g.setup()
	if err != nil {
		return err
	}

	cfg, err := p.Resolve(context.Background())
	if err != nil {
		return err
	}

	tmpl, err := templateFor(c.Template, rt)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, mailtemplate.Render(tmpl, mailtemplate.Fields{
		ServiceName: cfg.ServiceName,
		SenderName:  c.Name,
		SenderMail:  c.Email,
		Subject:     c.Title,
		Body:        c.Message,
		SiteURL:     cfg.ServiceURL,
		AdminMail:   cfg.AdminMail,
	}.Values()))
	return err
}

// ValidateCmd checks an event without sending anything
type ValidateCmd struct {
	Event string `arg:"" type:"existingfile" help:"Path to an event JSON file (proxy or direct shape)."`
}

// Run prints the field errors of the event, if any
func (c *ValidateCmd) Run(_ *Globals, out io.Writer) error {

	event, err := os.ReadFile(c.Event)
	if err != nil {
		return fmt.Errorf("could not read event: %w", err)
	}

	r, err := inquiry.Normalize(event)
	if err != nil {
		return err
	}

	_, err = validate.Validate(r)
	if verr, ok := err.(*validate.Error); ok {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(verr.Fields); err != nil {
			return err
		}
		return verr
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, "ok")
	return err
}
