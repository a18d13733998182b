package unimailer

import (
	"github.com/lattiq/unimailer/internal/core"
	"github.com/lattiq/unimailer/internal/providers/ses"
	"github.com/lattiq/unimailer/internal/providers/smtp"
)

// Type aliases to re-export core types for the public API.
type (
	Backend         = core.Backend
	BackendKind     = core.BackendKind
	SMTPBackend     = core.SMTPBackend
	SendGridBackend = core.SendGridBackend
	MailgunBackend  = core.MailgunBackend
	SESBackend      = core.SESBackend
	Settings        = core.Settings
	ErrorKind       = core.ErrorKind
	ProviderError   = core.ProviderError
	ValidationError = core.ValidationError

	// SMTPSender delivers assembled SMTP messages; see WithSMTPDialer.
	SMTPSender = smtp.Sender

	// SESClient is the SES API subset used by the SES backend; see WithSESClient.
	SESClient = ses.Client
)

// Backend kinds.
const (
	BackendSMTP     = core.BackendSMTP
	BackendSendGrid = core.BackendSendGrid
	BackendMailgun  = core.BackendMailgun
	BackendSES      = core.BackendSES
)

// Error kinds.
const (
	KindValidation = core.KindValidation
	KindSelection  = core.KindSelection
	KindConfig     = core.KindConfig
	KindTransport  = core.KindTransport
	KindRejected   = core.KindRejected
	KindAttachment = core.KindAttachment
)

// ParseBackend builds a typed Backend from a name and untyped settings, as
// found in configuration files. Unknown names return an error wrapping
// ErrInvalidBackend.
func ParseBackend(name string, settings Settings) (Backend, error) {
	b, err := core.ParseBackend(name, settings)
	if err != nil {
		return nil, &selectionError{cause: err}
	}
	return b, nil
}

type selectionError struct {
	cause error
}

func (e *selectionError) Error() string {
	return ErrInvalidBackend.Error() + ": " + e.cause.Error()
}

func (e *selectionError) Unwrap() []error {
	return []error{ErrInvalidBackend, e.cause}
}
