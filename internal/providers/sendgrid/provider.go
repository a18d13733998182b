package sendgrid

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lattiq/unimailer/internal/core"
)

const sendEndpoint = "/v3/mail/send"

// Provider implements core.Provider for SendGrid.
type Provider struct {
	config core.SendGridBackend
}

// NewProvider creates a new SendGrid provider.
func NewProvider(cfg core.SendGridBackend) (*Provider, error) {
	p := &Provider{config: cfg}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}
	return p, nil
}

// Send sends a single email using SendGrid. Only a 202 Accepted response
// counts as success.
func (p *Provider) Send(ctx context.Context, env *core.Envelope) error {
	message, err := BuildMessage(env)
	if err != nil {
		return err
	}

	request := sendgrid.GetRequest(p.config.APIKey, sendEndpoint, p.config.BaseURL)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(message)
	if env.UserAgent != "" {
		request.Headers["User-Agent"] = env.UserAgent
	}

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return core.Raised(p.Name(), core.KindTransport, err)
	}

	if response.StatusCode != http.StatusAccepted {
		pe := core.NewProviderError(p.Name(), core.KindRejected, "SendGrid error: "+response.Body)
		pe.StatusCode = response.StatusCode
		return pe
	}
	return nil
}

// ValidateConfig validates the provider configuration.
func (p *Provider) ValidateConfig() error {
	if p.config.APIKey == "" {
		return core.NewValidationError("api_key", "SendGrid API key is required")
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "sendgrid"
}

// BuildMessage converts env into a SendGrid v3 mail body.
//
// The sender is passed by address only. Recipients are mapped with
// toEmail, which forwards DisplayName; the message builder stores bare
// addresses, so names arrive empty.
func BuildMessage(env *core.Envelope) (*mail.SGMailV3, error) {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail("", env.From.Address))
	message.Subject = env.Subject

	personalization := mail.NewPersonalization()
	for _, r := range env.To {
		personalization.AddTos(toEmail(r))
	}
	for _, r := range env.Cc {
		personalization.AddCCs(toEmail(r))
	}
	for _, r := range env.Bcc {
		personalization.AddBCCs(toEmail(r))
	}
	message.AddPersonalizations(personalization)

	if len(env.ReplyTo) > 0 {
		message.SetReplyTo(toEmail(env.ReplyTo[0]))
	}

	// The API requires text/plain ahead of text/html.
	primary := mail.NewContent(env.ContentType(), env.PrimaryBody())
	if env.IncludeAlt && env.AltBody != "" {
		alt := mail.NewContent("text/plain", env.AltBody)
		if env.IsHTML {
			message.AddContent(alt, primary)
		} else {
			message.AddContent(primary, alt)
		}
	} else {
		message.AddContent(primary)
	}

	for _, path := range env.Attachments {
		a, err := fileAttachment(path, "attachment")
		if err != nil {
			return nil, err
		}
		message.AddAttachment(a)
	}

	// Embedded images are re-attached inline even if the same file is also
	// listed in Attachments.
	for _, img := range env.Images {
		a, err := fileAttachment(img.Path, "inline")
		if err != nil {
			return nil, err
		}
		a.SetContentID(img.ContentID)
		message.AddAttachment(a)
	}

	return message, nil
}

func toEmail(r core.Recipient) *mail.Email {
	return mail.NewEmail(r.DisplayName, r.Address)
}

func fileAttachment(path, disposition string) (*mail.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.Raised("sendgrid", core.KindAttachment, err)
	}

	contentType := core.DetectContentType(path)
	if disposition == "inline" {
		contentType = sniffContentType(data, path)
	}

	a := mail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(data))
	a.SetType(contentType)
	a.SetFilename(filepath.Base(path))
	a.SetDisposition(disposition)
	return a, nil
}

// sniffContentType detects the type from the file contents, falling back to
// the extension when the bytes are not recognized.
func sniffContentType(data []byte, path string) string {
	if t := http.DetectContentType(data); t != "application/octet-stream" {
		return t
	}
	return core.DetectContentType(path)
}
