package settings

import (
	"context"
	"os"

	"github.com/caarlos0/env/v10"
)

// Env reads the configuration from environment variables
type Env struct {
	// Environment replaces the process environment when set
	Environment map[string]string
}

func (e *Env) lookup(key string) string {
	if e.Environment != nil {
		return e.Environment[key]
	}
	return os.Getenv(key)
}

// Resolve parses the environment. REGION falls back to AWS_REGION.
func (e *Env) Resolve(_ context.Context) (*Configuration, error) {

	cfg := &Configuration{}
	err := env.ParseWithOptions(cfg, env.Options{Environment: e.Environment})
	if err != nil {
		return nil, &Error{Source: "env", Err: err}
	}

	if cfg.Region == "" {
		cfg.Region = e.lookup("AWS_REGION")
	}

	if err := cfg.check(); err != nil {
		return nil, &Error{Source: "env", Err: err}
	}
	return cfg, nil
}
