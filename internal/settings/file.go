package settings

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File reads the configuration from a YAML settings file
type File struct {
	Path string
}

// Resolve reads and decodes the settings file
func (f *File) Resolve(_ context.Context) (*Configuration, error) {

	src := "file " + f.Path

	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &Error{Source: src, Err: err}
	}

	cfg := &Configuration{}
	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		return nil, &Error{Source: src, Err: fmt.Errorf("failed to decode settings: %w", err)}
	}

	if err := cfg.check(); err != nil {
		return nil, &Error{Source: src, Err: err}
	}
	return cfg, nil
}
