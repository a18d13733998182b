package unimailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "en", cfg.Locale)
	require.True(t, cfg.Tracing.Enabled)
	require.Empty(t, cfg.Logging.Output)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Logging.Format = "xml"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tracing.ServiceName = ""
	require.Error(t, cfg.Validate())

	cfg.Tracing.Enabled = false
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromBytes(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromBytes("yaml", []byte(`
backend:
  type: mailgun
  settings:
    api_key: key-123
    domain: mg.example.com
locale: nl
logging:
  level: debug
`))
	require.NoError(t, err)

	require.Equal(t, "mailgun", cfg.Backend.Type)
	require.Equal(t, "key-123", cfg.Backend.Settings.Get("api_key"))
	require.Equal(t, "mg.example.com", cfg.Backend.Settings.Get("domain"))
	require.Equal(t, "nl", cfg.Locale)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)

	m, err := New(cfg)
	require.NoError(t, err)
	require.Equal(t, MailgunBackend{APIKey: "key-123", Domain: "mg.example.com"}, m.Backend())
	require.Equal(t, "nl", m.Language())
}

func TestLoadConfigFromBytes_UnknownBackend(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromBytes("yaml", []byte("backend:\n  type: carrier-pigeon\n"))
	require.NoError(t, err)

	m, err := New(cfg, WithoutTracing())
	require.NoError(t, err)
	compose(m)

	require.False(t, m.Send(context.Background()))
	require.Equal(t, []string{"Invalid API selection."}, m.Errors())
}

func TestLoadConfigFromBytes_SMTPPort(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromBytes("json", []byte(`{"backend":{"type":"smtp","settings":{"host":"smtp.example.com","port":587,"username":"user","password":"secret","encryption":"tls"}}}`))
	require.NoError(t, err)

	m, err := New(cfg)
	require.NoError(t, err)
	require.Equal(t, SMTPBackend{
		Auth:       true,
		Host:       "smtp.example.com",
		Port:       587,
		Username:   "user",
		Password:   "secret",
		Encryption: "tls",
	}, m.Backend())
}

func TestLoadConfigFromBytes_RequiresType(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFromBytes("", []byte("locale: en"))
	require.Error(t, err)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unimailer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale: en\nbackend:\n  type: sendgrid\n"), 0o600))

	t.Setenv("UNIMAILER_LOCALE", "nl")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "nl", cfg.Locale)
	require.Equal(t, "sendgrid", cfg.Backend.Type)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestNewLogger_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mail.log")
	m, err := New(DefaultConfig(), WithLogging("debug", "text", path), WithoutTracing())
	require.NoError(t, err)

	require.False(t, m.Send(context.Background()))
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Sender email address is required.")
}
