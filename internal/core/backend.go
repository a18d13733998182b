package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BackendKind names a delivery backend.
type BackendKind string

const (
	// BackendSMTP is an SMTP relay.
	BackendSMTP BackendKind = "smtp"

	// BackendSendGrid is the SendGrid v3 mail send API.
	BackendSendGrid BackendKind = "sendgrid"

	// BackendMailgun is the Mailgun messages API.
	BackendMailgun BackendKind = "mailgun"

	// BackendSES is Amazon Simple Email Service.
	BackendSES BackendKind = "aws_ses"
)

// String returns the string representation of the backend kind.
func (k BackendKind) String() string {
	return string(k)
}

// Backend is the closed set of backend selections. Each variant carries only
// the configuration its adapter needs. The unexported method keeps the set
// closed to this package.
type Backend interface {
	Kind() BackendKind
	isBackend()
}

// SMTPBackend configures the SMTP relay.
type SMTPBackend struct {
	// Auth enables host/credential configuration. When false the relay dials
	// Host:Port (defaults localhost:25) without credentials.
	Auth bool

	Host     string
	Port     int
	Username string
	Password string

	// Encryption is "ssl" for implicit TLS, "tls" for STARTTLS, or empty.
	Encryption string
}

// SendGridBackend configures the SendGrid API.
type SendGridBackend struct {
	APIKey string

	// BaseURL overrides the API host (default https://api.sendgrid.com).
	BaseURL string
}

// MailgunBackend configures the Mailgun API.
type MailgunBackend struct {
	APIKey string
	Domain string

	// BaseURL overrides the API base, e.g. the EU region.
	BaseURL string
}

// SESBackend configures Amazon SES.
type SESBackend struct {
	Region           string
	AccessKey        string
	SecretKey        string
	SessionToken     string
	ConfigurationSet string

	// Endpoint overrides the service endpoint.
	Endpoint string
}

func (SMTPBackend) Kind() BackendKind     { return BackendSMTP }
func (SendGridBackend) Kind() BackendKind { return BackendSendGrid }
func (MailgunBackend) Kind() BackendKind  { return BackendMailgun }
func (SESBackend) Kind() BackendKind      { return BackendSES }

func (SMTPBackend) isBackend()     {}
func (SendGridBackend) isBackend() {}
func (MailgunBackend) isBackend()  {}
func (SESBackend) isBackend()      {}

// ErrUnknownBackend is returned by ParseBackend for names outside the closed set.
var ErrUnknownBackend = errors.New("unknown backend")

// ParseBackendKind maps a backend name to its kind. Names are matched
// case-insensitively; the historical library names are accepted as aliases.
func ParseBackendKind(name string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "smtp", "phpmailer":
		return BackendSMTP, nil
	case "sendgrid":
		return BackendSendGrid, nil
	case "mailgun":
		return BackendMailgun, nil
	case "aws_ses", "ses":
		return BackendSES, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// ParseBackend builds a typed Backend from an untyped name and settings.
func ParseBackend(name string, settings Settings) (Backend, error) {
	kind, err := ParseBackendKind(name)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = Settings{}
	}

	switch kind {
	case BackendSMTP:
		port := 0
		if p := settings.Get("port"); p != "" {
			if port, err = strconv.Atoi(p); err != nil {
				return nil, NewValidationError("port", "invalid port number: "+p)
			}
		}
		return SMTPBackend{
			Auth:       parseBool(settings.Get("auth")) || settings.Get("username") != "",
			Host:       settings.Get("host"),
			Port:       port,
			Username:   settings.Get("username"),
			Password:   settings.Get("password"),
			Encryption: settings.Get("encryption"),
		}, nil
	case BackendSendGrid:
		return SendGridBackend{
			APIKey:  settings.Get("api_key"),
			BaseURL: settings.Get("base_url"),
		}, nil
	case BackendMailgun:
		return MailgunBackend{
			APIKey:  settings.Get("api_key"),
			Domain:  settings.Get("domain"),
			BaseURL: settings.Get("base_url"),
		}, nil
	default:
		return SESBackend{
			Region:           settings.Get("region"),
			AccessKey:        settings.Get("access_key"),
			SecretKey:        settings.Get("secret_key"),
			SessionToken:     settings.Get("session_token"),
			ConfigurationSet: settings.Get("configuration_set"),
			Endpoint:         settings.Get("endpoint"),
		}, nil
	}
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
