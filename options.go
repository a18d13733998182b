package unimailer

import (
	"log/slog"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/lattiq/unimailer/internal/providers/smtp"
)

// Option is a functional option for configuring the mailer.
type Option func(*Config)

// WithBackend selects a typed backend.
func WithBackend(b Backend) Option {
	return func(c *Config) {
		c.Selected = b
	}
}

// WithBackendName selects a backend by name with untyped settings, the way a
// config file would.
func WithBackendName(name string, settings Settings) Option {
	return func(c *Config) {
		c.Selected = nil
		c.Backend = BackendConfig{Type: name, Settings: settings}
	}
}

// WithSMTP selects an SMTP relay without authentication.
func WithSMTP(host string, port int) Option {
	return WithBackend(SMTPBackend{Host: host, Port: port})
}

// WithSMTPAuth selects an authenticated SMTP relay. encryption is "ssl",
// "tls" or empty.
func WithSMTPAuth(host string, port int, username, password, encryption string) Option {
	return WithBackend(SMTPBackend{
		Auth:       true,
		Host:       host,
		Port:       port,
		Username:   username,
		Password:   password,
		Encryption: encryption,
	})
}

// WithSendGrid selects the SendGrid API.
func WithSendGrid(apiKey string) Option {
	return WithBackend(SendGridBackend{APIKey: apiKey})
}

// WithMailgun selects the Mailgun API.
func WithMailgun(apiKey, domain string) Option {
	return WithBackend(MailgunBackend{APIKey: apiKey, Domain: domain})
}

// WithMailgunEU selects the Mailgun API in the EU region.
func WithMailgunEU(apiKey, domain string) Option {
	return WithBackend(MailgunBackend{
		APIKey:  apiKey,
		Domain:  domain,
		BaseURL: mailgun.APIBaseEU,
	})
}

// WithSES selects AWS SES using the default credential chain.
func WithSES(region string) Option {
	return WithBackend(SESBackend{Region: region})
}

// WithSESCredentials selects AWS SES with explicit credentials.
func WithSESCredentials(region, accessKey, secretKey string) Option {
	return WithBackend(SESBackend{
		Region:    region,
		AccessKey: accessKey,
		SecretKey: secretKey,
	})
}

// WithLocale sets the locale used for localized messages.
func WithLocale(locale string) Option {
	return func(c *Config) {
		c.Locale = locale
	}
}

// WithLogger sets the logger, overriding LoggingConfig.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithLogging configures logging.
func WithLogging(level, format, output string) Option {
	return func(c *Config) {
		c.Logging.Level = level
		c.Logging.Format = format
		c.Logging.Output = output
	}
}

// WithoutTracing disables distributed tracing.
func WithoutTracing() Option {
	return func(c *Config) {
		c.Tracing.Enabled = false
	}
}

// WithSMTPDialer replaces the SMTP dialer. Useful for tests and for callers
// that manage their own connections.
func WithSMTPDialer(fn func(SMTPBackend) SMTPSender) Option {
	return func(c *Config) {
		c.hooks.SMTPDialer = smtp.DialFunc(fn)
	}
}

// WithSESClient injects an SES client instead of loading AWS configuration.
func WithSESClient(client SESClient) Option {
	return func(c *Config) {
		c.hooks.SESClient = client
	}
}

