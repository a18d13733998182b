package providers

import (
	"context"
	"fmt"

	"github.com/lattiq/unimailer/internal/core"
	"github.com/lattiq/unimailer/internal/providers/mailgun"
	"github.com/lattiq/unimailer/internal/providers/sendgrid"
	"github.com/lattiq/unimailer/internal/providers/ses"
	"github.com/lattiq/unimailer/internal/providers/smtp"
)

// Options carries test and integration hooks for individual providers.
type Options struct {
	SMTPDialer smtp.DialFunc
	SESClient  ses.Client
}

// New creates the provider for the given backend selection.
func New(ctx context.Context, backend core.Backend, opts Options) (core.Provider, error) {
	switch b := concrete(backend).(type) {
	case core.SMTPBackend:
		var smtpOpts []smtp.Option
		if opts.SMTPDialer != nil {
			smtpOpts = append(smtpOpts, smtp.WithDialer(opts.SMTPDialer))
		}
		return smtp.NewProvider(b, smtpOpts...)
	case core.SendGridBackend:
		return sendgrid.NewProvider(b)
	case core.MailgunBackend:
		return mailgun.NewProvider(b)
	case core.SESBackend:
		var sesOpts []ses.Option
		if opts.SESClient != nil {
			sesOpts = append(sesOpts, ses.WithClient(opts.SESClient))
		}
		return ses.NewProvider(ctx, b, sesOpts...)
	default:
		return nil, fmt.Errorf("%w: %T", core.ErrUnknownBackend, backend)
	}
}

// concrete dereferences pointer variants. Nil pointers are left as is and
// fall through to ErrUnknownBackend.
func concrete(backend core.Backend) core.Backend {
	switch b := backend.(type) {
	case *core.SMTPBackend:
		if b != nil {
			return *b
		}
	case *core.SendGridBackend:
		if b != nil {
			return *b
		}
	case *core.MailgunBackend:
		if b != nil {
			return *b
		}
	case *core.SESBackend:
		if b != nil {
			return *b
		}
	}
	return backend
}
