package smtp

import (
	"context"
	"crypto/tls"
	"os"

	"gopkg.in/gomail.v2"

	"github.com/lattiq/unimailer/internal/core"
)

const (
	defaultHost = "localhost"
	defaultPort = 25
)

// Sender delivers assembled messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// DialFunc returns the Sender used for a single send.
type DialFunc func(cfg core.SMTPBackend) Sender

// Option configures the provider.
type Option func(*Provider)

// WithDialer replaces the gomail dialer, mainly for tests.
func WithDialer(fn DialFunc) Option {
	return func(p *Provider) {
		p.dial = fn
	}
}

// Provider implements core.Provider for an SMTP relay.
type Provider struct {
	config core.SMTPBackend
	dial   DialFunc
}

// NewProvider creates a new SMTP provider.
func NewProvider(cfg core.SMTPBackend, opts ...Option) (*Provider, error) {
	p := &Provider{
		config: cfg,
		dial:   NewDialer,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewDialer builds a gomail dialer from the backend configuration. Credentials
// and encryption are applied only in auth mode.
func NewDialer(cfg core.SMTPBackend) Sender {
	host, port := cfg.Host, cfg.Port
	if host == "" {
		host = defaultHost
	}
	if port == 0 {
		port = defaultPort
	}

	if !cfg.Auth {
		d := gomail.NewDialer(host, port, "", "")
		d.SSL = false
		return d
	}

	d := gomail.NewDialer(host, port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}
	switch cfg.Encryption {
	case "ssl":
		d.SSL = true
	case "tls":
		d.SSL = false
	}
	return d
}

// Send sends a single email over SMTP.
func (p *Provider) Send(ctx context.Context, env *core.Envelope) error {
	if err := ctx.Err(); err != nil {
		return core.Raised(p.Name(), core.KindTransport, err)
	}

	for _, path := range env.Attachments {
		if err := readable(path); err != nil {
			return &core.ProviderError{
				Provider: p.Name(),
				Kind:     core.KindAttachment,
				Message:  "SMTP error: Could not access file: " + path,
				Cause:    err,
			}
		}
	}
	for _, img := range env.Images {
		if err := readable(img.Path); err != nil {
			return &core.ProviderError{
				Provider: p.Name(),
				Kind:     core.KindAttachment,
				Message:  "SMTP error: Could not access file: " + img.Path,
				Cause:    err,
			}
		}
	}

	msg := BuildMessage(env)

	if err := p.dial(p.config).DialAndSend(msg); err != nil {
		return &core.ProviderError{
			Provider: p.Name(),
			Kind:     core.KindTransport,
			Message:  "SMTP error: " + err.Error(),
			Cause:    err,
		}
	}
	return nil
}

// ValidateConfig validates the provider configuration.
func (p *Provider) ValidateConfig() error {
	if p.config.Auth && p.config.Host == "" {
		return core.NewValidationError("host", "SMTP host is required")
	}
	if p.config.Port < 0 || p.config.Port > 65535 {
		return core.NewValidationError("port", "invalid port number")
	}
	switch p.config.Encryption {
	case "", "ssl", "tls":
	default:
		return core.NewValidationError("encryption", "unsupported encryption: "+p.config.Encryption)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "smtp"
}

// BuildMessage assembles the MIME message for env. The body is the HTML
// version when set, else the text version, else the fallback body.
func BuildMessage(env *core.Envelope) *gomail.Message {
	msg := gomail.NewMessage()

	msg.SetAddressHeader("From", env.From.Address, env.From.DisplayName)
	setRecipients(msg, "To", env.To)
	setRecipients(msg, "Cc", env.Cc)
	setRecipients(msg, "Bcc", env.Bcc)
	setRecipients(msg, "Reply-To", env.ReplyTo)
	msg.SetHeader("Subject", env.Subject)
	if env.UserAgent != "" {
		msg.SetHeader("X-Mailer", env.UserAgent)
	}

	body := env.PreferredBody()
	if env.IncludeAlt && env.AltBody != "" {
		msg.SetBody("text/plain", env.AltBody)
		msg.AddAlternative(env.ContentType(), body)
	} else {
		msg.SetBody(env.ContentType(), body)
	}

	for _, path := range env.Attachments {
		msg.Attach(path)
	}
	for _, img := range env.Images {
		msg.Embed(img.Path, gomail.SetHeader(map[string][]string{
			"Content-ID": {"<" + img.ContentID + ">"},
		}))
	}
	return msg
}

func setRecipients(msg *gomail.Message, field string, rs []core.Recipient) {
	if len(rs) == 0 {
		return
	}
	values := make([]string, len(rs))
	for i, r := range rs {
		values[i] = msg.FormatAddress(r.Address, r.DisplayName)
	}
	msg.SetHeader(field, values...)
}

func readable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
