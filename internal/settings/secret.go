package settings

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/tidwall/gjson"
)

// SecretGetter is the part of the Secrets Manager API used here
type SecretGetter interface {
	GetSecretValueWithContext(aws.Context, *secretsmanager.GetSecretValueInput, ...request.Option) (*secretsmanager.GetSecretValueOutput, error)
}

// Secret reads the configuration from a Secrets Manager secret on every call.
// The secret string is a JSON object keyed like the environment variables.
type Secret struct {
	Client   SecretGetter
	SecretID string
	// Region is used when the secret does not carry a REGION
	Region string
}

// Resolve fetches and decodes the secret
func (s *Secret) Resolve(ctx context.Context) (*Configuration, error) {

	src := "secret " + s.SecretID

	if s.SecretID == "" {
		return nil, &Error{Source: "secret", Err: fmt.Errorf("no secret id provided")}
	}

	out, err := s.Client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.SecretID),
	})
	if err != nil {
		return nil, &Error{Source: src, Err: fmt.Errorf("failed to get secret value: %w", err)}
	}

	body := aws.StringValue(out.SecretString)
	if !gjson.Valid(body) || !gjson.Parse(body).IsObject() {
		return nil, &Error{Source: src, Err: fmt.Errorf("secret string is not a JSON object")}
	}

	cfg := &Configuration{
		AdminMail:       gjson.Get(body, "SERVICE_ADMIN_MAIL").String(),
		ServiceName:     gjson.Get(body, "SERVICE_NAME").String(),
		ServiceURL:      gjson.Get(body, "SERVICE_URL").String(),
		ReplyTitle:      gjson.Get(body, "REPLY_TITLE").String(),
		CORSAllowOrigin: gjson.Get(body, "CORS_ALLOW_ORIGIN").String(),
		Region:          gjson.Get(body, "REGION").String(),
	}
	if cfg.Region == "" {
		cfg.Region = s.Region
	}

	if err := cfg.check(); err != nil {
		return nil, &Error{Source: src, Err: err}
	}
	return cfg, nil
}
