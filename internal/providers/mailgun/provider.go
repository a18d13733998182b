package mailgun

import (
	"context"
	"strings"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/lattiq/unimailer/internal/core"
)

// Parameter keys of the messages call.
const (
	ParamFrom       = "from"
	ParamTo         = "to"
	ParamSubject    = "subject"
	ParamText       = "text"
	ParamHTML       = "html"
	ParamCc         = "cc"
	ParamBcc        = "bcc"
	ParamAttachment = "attachment"
	ParamReplyTo    = "h:Reply-To"
)

// Params is the parameter mapping handed to the messages call. Values are
// either string or []string.
type Params map[string]any

// String returns the string value stored under key.
func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// List returns the []string value stored under key.
func (p Params) List(key string) []string {
	l, _ := p[key].([]string)
	return l
}

// Provider implements core.Provider for Mailgun.
type Provider struct {
	client mailgun.Mailgun
	config core.MailgunBackend
}

// NewProvider creates a new Mailgun provider.
func NewProvider(cfg core.MailgunBackend) (*Provider, error) {
	p := &Provider{config: cfg}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	client := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)

	// Set base URL if provided (for EU customers)
	if cfg.BaseURL != "" {
		client.SetAPIBase(APIBase(cfg.BaseURL))
	}
	p.client = client

	return p, nil
}

// Send sends a single email using Mailgun. Success is the absence of an
// error from the client; the response status is not inspected separately.
func (p *Provider) Send(ctx context.Context, env *core.Envelope) error {
	message := newMessage(BuildParams(env))

	if _, _, err := p.client.Send(ctx, message); err != nil {
		pe := core.Raised(p.Name(), core.KindTransport, err)
		if status := mailgun.GetStatusFromErr(err); status > 0 {
			pe.Kind = core.KindRejected
			pe.StatusCode = status
		}
		return pe
	}
	return nil
}

// ValidateConfig validates the Mailgun provider configuration.
func (p *Provider) ValidateConfig() error {
	if p.config.APIKey == "" {
		return core.NewValidationError("api_key", "Mailgun API key is required")
	}
	if p.config.Domain == "" {
		return core.NewValidationError("domain", "Mailgun domain is required")
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mailgun"
}

// APIBase returns base with an API version suffix. The client rejects bases
// that do not end in /v1 to /v4; a bare host gets /v3.
func APIBase(base string) string {
	base = strings.TrimSuffix(base, "/")
	for _, v := range []string{"/v1", "/v2", "/v3", "/v4"} {
		if strings.HasSuffix(base, v) {
			return base
		}
	}
	return base + "/v3"
}

// BuildParams maps env onto the messages parameters. Recipients are passed
// as raw address lists. The primary body always goes to text; when IsHTML is
// set it is duplicated into html.
func BuildParams(env *core.Envelope) Params {
	body := env.PrimaryBody()
	params := Params{
		ParamFrom:    env.From.Address,
		ParamTo:      core.Addresses(env.To),
		ParamSubject: env.Subject,
		ParamText:    body,
		ParamCc:      core.Addresses(env.Cc),
		ParamBcc:     core.Addresses(env.Bcc),
	}

	if env.IsHTML {
		params[ParamHTML] = body
	}

	if len(env.Attachments) > 0 {
		params[ParamAttachment] = append([]string(nil), env.Attachments...)
	}

	if len(env.ReplyTo) > 0 {
		params[ParamReplyTo] = env.ReplyTo[0].Address
	}

	return params
}

func newMessage(params Params) *mailgun.Message {
	message := mailgun.NewMessage(
		params.String(ParamFrom),
		params.String(ParamSubject),
		params.String(ParamText),
		params.List(ParamTo)...,
	)

	for _, cc := range params.List(ParamCc) {
		message.AddCC(cc)
	}
	for _, bcc := range params.List(ParamBcc) {
		message.AddBCC(bcc)
	}
	if html := params.String(ParamHTML); html != "" {
		message.SetHTML(html)
	}
	for _, path := range params.List(ParamAttachment) {
		message.AddAttachment(path)
	}
	if replyTo := params.String(ParamReplyTo); replyTo != "" {
		message.SetReplyTo(replyTo)
	}
	return message
}
