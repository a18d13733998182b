package ses

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/lattiq/unimailer/internal/core"
	"github.com/lattiq/unimailer/internal/providers/smtp"
)

// Client is the subset of the SES API used by the provider.
type Client interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Option configures the provider.
type Option func(*Provider)

// WithClient injects an SES client instead of loading the AWS configuration.
func WithClient(c Client) Option {
	return func(p *Provider) {
		p.client = c
	}
}

// Provider implements core.Provider for AWS SES.
type Provider struct {
	client Client
	config core.SESBackend
}

// NewProvider creates a new AWS SES provider.
func NewProvider(ctx context.Context, cfg core.SESBackend, opts ...Option) (*Provider, error) {
	p := &Provider{config: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}
	if p.client != nil {
		return p, nil
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	// Override with explicit credentials if provided
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, core.Raised(p.Name(), core.KindConfig, err)
	}

	p.client = ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return p, nil
}

// Send sends a single email as a raw MIME message so attachments and
// embedded images survive.
func (p *Provider) Send(ctx context.Context, env *core.Envelope) error {
	var buf bytes.Buffer
	if _, err := smtp.BuildMessage(env).WriteTo(&buf); err != nil {
		return core.Raised(p.Name(), core.KindAttachment, err)
	}

	destinations := make([]string, 0, len(env.To)+len(env.Cc)+len(env.Bcc))
	destinations = append(destinations, core.Addresses(env.To)...)
	destinations = append(destinations, core.Addresses(env.Cc)...)
	destinations = append(destinations, core.Addresses(env.Bcc)...)

	input := &ses.SendRawEmailInput{
		Source:       aws.String(env.From.Address),
		Destinations: destinations,
		RawMessage:   &types.RawMessage{Data: buf.Bytes()},
	}

	// Add configuration set if specified
	if p.config.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(p.config.ConfigurationSet)
	}

	if _, err := p.client.SendRawEmail(ctx, input); err != nil {
		return core.Raised(p.Name(), core.KindTransport, err)
	}
	return nil
}

// ValidateConfig validates the provider configuration.
func (p *Provider) ValidateConfig() error {
	if p.config.Region == "" {
		return core.NewValidationError("region", "AWS region is required")
	}
	if p.config.AccessKey != "" && p.config.SecretKey == "" {
		return core.NewValidationError("secret_key", "secret key is required when access key is provided")
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "aws_ses"
}
