package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Runtime holds the process settings read at cold start
type Runtime struct {
	Source       string     `env:"CONFIG_SOURCE" envDefault:"env"`
	SettingsFile string     `env:"SETTINGS_FILE" envDefault:"settings.yaml"`
	SecretID     string     `env:"SECRET_ID"`
	TemplatePath string     `env:"TEMPLATE_PATH"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	AWSRegion    string     `env:"AWS_REGION"`
}

// LoadRuntime loads an optional dotenv file, then parses the runtime settings.
// Variables already set in the environment win over the file.
func LoadRuntime(dotenv string) (*Runtime, error) {

	var err error
	if dotenv != "" {
		err = godotenv.Load(dotenv)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Source: "dotenv", Err: err}
	}

	rt := &Runtime{}
	if err := env.Parse(rt); err != nil {
		return nil, &Error{Source: "env", Err: err}
	}
	return rt, nil
}

// Provider picks the configuration source named by CONFIG_SOURCE. Static
// sources are read once; a secret is fetched on every invocation.
func (rt *Runtime) Provider(p client.ConfigProvider) (Provider, error) {

	switch rt.Source {
	case "env":
		return Once(&Env{}), nil
	case "file":
		return Once(&File{Path: rt.SettingsFile}), nil
	case "secret":
		if rt.SecretID == "" {
			return nil, &Error{Source: "secret", Err: fmt.Errorf("SECRET_ID is not set")}
		}
		sm := secretsmanager.New(p, &aws.Config{Region: aws.String(rt.AWSRegion)})
		return &Secret{Client: sm, SecretID: rt.SecretID, Region: rt.AWSRegion}, nil
	default:
		return nil, &Error{Source: rt.Source, Err: fmt.Errorf("unknown configuration source")}
	}
}
