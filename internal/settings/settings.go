// Package settings resolves the service configuration from the environment,
// a static settings file or AWS Secrets Manager.
package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Configuration holds the values an invocation needs before sending mail
type Configuration struct {
	AdminMail       string `env:"SERVICE_ADMIN_MAIL" yaml:"service_admin_mail"`
	ServiceName     string `env:"SERVICE_NAME" yaml:"service_name"`
	ServiceURL      string `env:"SERVICE_URL" yaml:"service_url"`
	ReplyTitle      string `env:"REPLY_TITLE" yaml:"reply_title"`
	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" yaml:"cors_allow_origin"`
	Region          string `env:"REGION" yaml:"region"`
}

// check reports every empty value by its environment name
func (c *Configuration) check() error {

	fields := []struct {
		name  string
		value string
	}{
		{"SERVICE_ADMIN_MAIL", c.AdminMail},
		{"SERVICE_NAME", c.ServiceName},
		{"SERVICE_URL", c.ServiceURL},
		{"REPLY_TITLE", c.ReplyTitle},
		{"CORS_ALLOW_ORIGIN", c.CORSAllowOrigin},
		{"REGION", c.Region},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing value: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Provider is an abstraction for a configuration source
type Provider interface {
	Resolve(ctx context.Context) (*Configuration, error)
}

// Error means a configuration source could not be read or was incomplete
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("could not resolve configuration from %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// once remembers the first configuration a provider resolved
type once struct {
	mu  sync.Mutex
	p   Provider
	cfg *Configuration
}

// Once wraps p so that it is only asked until it succeeds. Use it for sources
// which do not change while the process lives.
func Once(p Provider) Provider {
	return &once{p: p}
}

func (o *once) Resolve(ctx context.Context) (*Configuration, error) {

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cfg != nil {
		c := *o.cfg
		return &c, nil
	}

	cfg, err := o.p.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg

	c := *cfg
	return &c, nil
}
