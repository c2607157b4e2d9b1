package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullEnv() map[string]string {
	return map[string]string{
		"SERVICE_ADMIN_MAIL": "admin@example.com",
		"SERVICE_NAME":       "Example Service",
		"SERVICE_URL":        "https://example.com",
		"REPLY_TITLE":        "Thank you for your inquiry",
		"CORS_ALLOW_ORIGIN":  "https://example.com",
		"REGION":             "ap-northeast-1",
	}
}

var want = Configuration{
	AdminMail:       "admin@example.com",
	ServiceName:     "Example Service",
	ServiceURL:      "https://example.com",
	ReplyTitle:      "Thank you for your inquiry",
	CORSAllowOrigin: "https://example.com",
	Region:          "ap-northeast-1",
}

func TestEnv(t *testing.T) {

	t.Run("happy", func(t *testing.T) {
		cfg, err := (&Env{Environment: fullEnv()}).Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, *cfg)
	})

	t.Run("region from AWS_REGION", func(t *testing.T) {
		e := fullEnv()
		delete(e, "REGION")
		e["AWS_REGION"] = "eu-west-2"
		cfg, err := (&Env{Environment: e}).Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "eu-west-2", cfg.Region)
	})

	t.Run("missing values", func(t *testing.T) {
		e := fullEnv()
		delete(e, "SERVICE_ADMIN_MAIL")
		e["REPLY_TITLE"] = ""
		_, err := (&Env{Environment: e}).Resolve(context.Background())
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "env", cerr.Source)
		assert.Contains(t, err.Error(), "SERVICE_ADMIN_MAIL, REPLY_TITLE")
	})
}

func TestFile(t *testing.T) {

	dir := t.TempDir()
	good := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
service_admin_mail: admin@example.com
service_name: Example Service
service_url: https://example.com
reply_title: Thank you for your inquiry
cors_allow_origin: https://example.com
region: ap-northeast-1
`), 0o600))

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("service_name: Example Service\n"), 0o600))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("service_name: [\n"), 0o600))

	tt := []struct {
		name string
		path string
		err  string
	}{
		{name: "happy", path: good},
		{name: "partial", path: partial, err: "missing value: SERVICE_ADMIN_MAIL"},
		{name: "broken", path: broken, err: "failed to decode settings"},
		{name: "missing file", path: filepath.Join(dir, "nope.yaml"), err: "no such file"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := (&File{Path: tc.path}).Resolve(context.Background())
			if tc.err != "" {
				var cerr *Error
				require.True(t, errors.As(err, &cerr), "expected *Error, got %v", err)
				assert.Contains(t, err.Error(), tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, *cfg)
		})
	}
}

type mockSecretsManager struct {
	secretsmanageriface.SecretsManagerAPI
	secret *string
	err    error
	calls  int
}

func (m *mockSecretsManager) GetSecretValueWithContext(_ aws.Context, in *secretsmanager.GetSecretValueInput, _ ...request.Option) (*secretsmanager.GetSecretValueOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &secretsmanager.GetSecretValueOutput{Name: in.SecretId, SecretString: m.secret}, nil
}

func TestSecret(t *testing.T) {

	tt := []struct {
		name   string
		id     string
		secret *string
		apiErr error
		region string
		err    string
	}{
		{name: "happy", id: "inquiry/config", secret: aws.String(`{
			"SERVICE_ADMIN_MAIL": "admin@example.com",
			"SERVICE_NAME": "Example Service",
			"SERVICE_URL": "https://example.com",
			"REPLY_TITLE": "Thank you for your inquiry",
			"CORS_ALLOW_ORIGIN": "https://example.com",
			"REGION": "ap-northeast-1"}`)},
		{name: "region from provider", id: "inquiry/config", region: "ap-northeast-1", secret: aws.String(`{
			"SERVICE_ADMIN_MAIL": "admin@example.com",
			"SERVICE_NAME": "Example Service",
			"SERVICE_URL": "https://example.com",
			"REPLY_TITLE": "Thank you for your inquiry",
			"CORS_ALLOW_ORIGIN": "https://example.com"}`)},
		{name: "no id", err: "no secret id provided"},
		{name: "api error", id: "inquiry/config", apiErr: errors.New("AccessDeniedException"), err: "AccessDeniedException"},
		{name: "not json", id: "inquiry/config", secret: aws.String("admin@example.com"), err: "not a JSON object"},
		{name: "incomplete", id: "inquiry/config", secret: aws.String(`{"SERVICE_NAME":"x"}`), err: "missing value"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockSecretsManager{secret: tc.secret, err: tc.apiErr}
			s := &Secret{Client: m, SecretID: tc.id, Region: tc.region}

			cfg, err := s.Resolve(context.Background())
			if tc.err != "" {
				var cerr *Error
				require.True(t, errors.As(err, &cerr), "expected *Error, got %v", err)
				assert.Contains(t, err.Error(), tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, *cfg)
		})
	}
}

type countingProvider struct {
	calls int
	fail  bool
}

func (c *countingProvider) Resolve(context.Context) (*Configuration, error) {
	c.calls++
	if c.fail {
		return nil, &Error{Source: "test", Err: errors.New("unavailable")}
	}
	cfg := want
	return &cfg, nil
}

func TestOnce(t *testing.T) {

	cp := &countingProvider{fail: true}
	p := Once(cp)

	_, err := p.Resolve(context.Background())
	require.Error(t, err)

	cp.fail = false
	for i := 0; i < 3; i++ {
		cfg, err := p.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, *cfg)
		cfg.AdminMail = "changed@example.com"
	}
	assert.Equal(t, 2, cp.calls, "failures are retried, successes are kept")
}

func TestRuntimeProvider(t *testing.T) {

	sess := session.Must(session.NewSession(&aws.Config{Region: aws.String("ap-northeast-1")}))

	tt := []struct {
		name string
		rt   Runtime
		err  string
	}{
		{name: "env", rt: Runtime{Source: "env"}},
		{name: "file", rt: Runtime{Source: "file", SettingsFile: "settings.yaml"}},
		{name: "secret", rt: Runtime{Source: "secret", SecretID: "inquiry/config", AWSRegion: "ap-northeast-1"}},
		{name: "secret without id", rt: Runtime{Source: "secret"}, err: "SECRET_ID is not set"},
		{name: "unknown", rt: Runtime{Source: "ssm"}, err: "unknown configuration source"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.rt.Provider(sess)
			if tc.err != "" {
				assert.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestLoadRuntime(t *testing.T) {

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONFIG_SOURCE=file\nLOG_LEVEL=DEBUG\n"), 0o600))

	t.Setenv("CONFIG_SOURCE", "")
	os.Unsetenv("CONFIG_SOURCE")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("TEMPLATE_PATH", "/var/task/confirm.txt")

	rt, err := LoadRuntime(path)
	require.NoError(t, err)
	assert.Equal(t, "file", rt.Source)
	assert.Equal(t, "WARN", rt.LogLevel.String(), "real environment wins over the dotenv file")
	assert.Equal(t, "/var/task/confirm.txt", rt.TemplatePath)
	assert.Equal(t, "settings.yaml", rt.SettingsFile)

	_, err = LoadRuntime(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err, "a missing dotenv file is not an error")
}
