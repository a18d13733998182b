package unimailer

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/lattiq/unimailer/internal/core"
	"github.com/lattiq/unimailer/internal/providers"
)

// Mailer composes one email message and dispatches it through the selected
// backend.
//
// Create one with New. A zero Mailer is usable but has no backend selected,
// does not trace or log, and starts with the HTML and alt-body flags off.
//
// A Mailer is not safe for concurrent use. Fields persist across sends, so
// the same instance may be sent repeatedly; each Send resets the error list.
type Mailer struct {
	message

	backend      Backend
	selectionErr error
	locale       string

	failures []Failure

	userAgent string
	hooks     providers.Options
	logger    *slog.Logger
	logCloser io.Closer
	tracer    trace.Tracer
}

// New creates a new mailer with the given configuration.
func New(config Config, opts ...Option) (*Mailer, error) {
	// Apply functional options
	for _, opt := range opts {
		opt(&config)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Mailer{
		message:   newMessage(),
		locale:    config.Locale,
		userAgent: GetVersionInfo().UserAgent(),
		hooks:     config.hooks,
		logger:    config.logger,
	}
	if m.locale == "" {
		m.locale = defaultLocale
	}

	if m.logger == nil {
		logger, closer, err := newLogger(config.Logging)
		if err != nil {
			return nil, err
		}
		m.logger, m.logCloser = logger, closer
	}

	if config.Tracing.Enabled {
		m.tracer = otel.Tracer(config.Tracing.ServiceName)
	} else {
		m.tracer = noop.NewTracerProvider().Tracer("")
	}

	switch {
	case config.Selected != nil:
		m.SelectBackend(config.Selected)
	case config.Backend.Type != "":
		m.SelectBackendByName(config.Backend.Type, config.Backend.Settings)
	}

	return m, nil
}

// SelectBackend selects the backend used by subsequent sends.
func (m *Mailer) SelectBackend(b Backend) {
	m.backend = b
	m.selectionErr = nil
}

// SelectBackendByName selects a backend from an untyped name and settings.
// An unknown name clears the selection; the next Send then fails with
// "Invalid API selection.".
func (m *Mailer) SelectBackendByName(name string, settings Settings) {
	m.setDefaults()

	b, err := ParseBackend(name, settings)
	if err != nil {
		m.logger.Warn("unimailer: backend selection rejected", "backend", name, "error", err)
		m.backend, m.selectionErr = nil, err
		return
	}
	m.SelectBackend(b)
}

// Backend returns the selected backend, or nil if none is usable.
func (m *Mailer) Backend() Backend {
	return m.backend
}

// Send validates the message and delivers it through the selected backend.
// It performs at most one backend call and never returns a raised error:
// on failure it returns false and Errors describes why.
func (m *Mailer) Send(ctx context.Context) bool {
	m.setDefaults()
	m.failures = nil

	ctx, span := m.tracer.Start(ctx, "unimailer.Mailer.Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("unimailer.from", m.fromAddress),
		attribute.String("unimailer.subject", m.subject),
		attribute.Int("unimailer.recipients", len(m.to)+len(m.cc)+len(m.bcc)),
		attribute.Int("unimailer.attachments", len(m.attachments)),
		attribute.Int("unimailer.images", len(m.imageOrder)),
	)

	if !m.validate() {
		span.SetStatus(codes.Error, "validation failed")
		m.logFailures(ctx)
		return false
	}

	if m.backend == nil {
		m.fail(Failure{Kind: KindSelection, Message: msgInvalidSelection, Err: m.selectionError()})
		span.RecordError(ErrInvalidBackend)
		span.SetStatus(codes.Error, "invalid backend selection")
		m.logFailures(ctx)
		return false
	}

	provider, err := providers.New(ctx, m.backend, m.hooks)
	if err != nil {
		if errors.Is(err, core.ErrUnknownBackend) {
			m.fail(Failure{Kind: KindSelection, Message: msgInvalidSelection, Err: errors.Join(ErrInvalidBackend, err)})
		} else {
			m.fail(failureFromError(err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider setup failed")
		m.logFailures(ctx)
		return false
	}

	span.SetAttributes(attribute.String("unimailer.backend", provider.Name()))
	m.logger.DebugContext(ctx, "unimailer: dispatching",
		"backend", provider.Name(),
		"recipients", len(m.to)+len(m.cc)+len(m.bcc),
	)

	if err := provider.Send(ctx, m.envelope()); err != nil {
		m.fail(failureFromError(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		m.logFailures(ctx)
		return false
	}

	span.SetStatus(codes.Ok, "email sent successfully")
	return true
}

// Errors returns the messages recorded since the last Send started, in order.
func (m *Mailer) Errors() []string {
	return m.Result().Messages()
}

// Result returns the outcome of the most recent Send.
func (m *Mailer) Result() Result {
	return Result{failures: append([]Failure(nil), m.failures...)}
}

// Err returns the failures of the most recent Send joined into one error, or nil.
func (m *Mailer) Err() error {
	return m.Result().Err()
}

// Close releases the log file opened for LoggingConfig.Output, if any.
func (m *Mailer) Close() error {
	if m.logCloser == nil {
		return nil
	}
	err := m.logCloser.Close()
	m.logCloser = nil
	return err
}

// setDefaults fills in what New sets up, for Mailers built without it.
func (m *Mailer) setDefaults() {
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.tracer == nil {
		m.tracer = noop.NewTracerProvider().Tracer("")
	}
	if m.images == nil {
		m.images = make(map[string]string)
	}
}

func (m *Mailer) fail(f Failure) {
	m.failures = append(m.failures, f)
}

func (m *Mailer) selectionError() error {
	if m.selectionErr != nil {
		return m.selectionErr
	}
	return ErrInvalidBackend
}

func (m *Mailer) logFailures(ctx context.Context) {
	for _, f := range m.failures {
		m.logger.WarnContext(ctx, "unimailer: send failed", "kind", f.Kind.String(), "error", f.Message)
	}
}

// envelope snapshots the message for a provider.
func (m *Mailer) envelope() *core.Envelope {
	env := &core.Envelope{
		From:        core.Recipient{Address: m.fromAddress, DisplayName: m.fromName},
		To:          recipients(m.to),
		Cc:          recipients(m.cc),
		Bcc:         recipients(m.bcc),
		ReplyTo:     recipients(m.replyTo),
		Subject:     m.subject,
		Body:        m.body,
		HTMLVersion: m.htmlVersion,
		TextVersion: m.textVersion,
		AltBody:     m.altBody,
		IsHTML:      m.isHTML,
		IncludeAlt:  m.includeAlt,
		Attachments: append([]string(nil), m.attachments...),
		UserAgent:   m.userAgent,
	}
	for _, cid := range m.imageOrder {
		env.Images = append(env.Images, core.InlineImage{ContentID: cid, Path: m.images[cid]})
	}
	return env
}

// recipients maps stored addresses to recipients. The builder keeps bare
// addresses, so DisplayName is always empty here.
func recipients(addrs []string) []core.Recipient {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]core.Recipient, len(addrs))
	for i, a := range addrs {
		out[i] = core.Recipient{Address: a}
	}
	return out
}
