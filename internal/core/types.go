package core

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"path/filepath"
	"strings"
)

// Provider defines the interface for email delivery backends.
// Implementations translate an Envelope into the backend's native request
// shape and perform exactly one send per call.
type Provider interface {
	// Send delivers the envelope. Any failure is returned as a *ProviderError
	// whose Message is the single human-readable line shown to callers.
	Send(ctx context.Context, env *Envelope) error

	// ValidateConfig validates the provider configuration.
	ValidateConfig() error

	// Name returns the provider's name for identification and logging.
	Name() string
}

// Settings represents untyped backend configuration, typically decoded from a
// config file or environment.
type Settings map[string]string

// Get retrieves a configuration value by key.
func (s Settings) Get(key string) string {
	return s[key]
}

// Recipient is an email address with an optional display name.
type Recipient struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
}

// Addresses returns the bare addresses of rs in order.
func Addresses(rs []Recipient) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Address
	}
	return out
}

// ValidAddress reports whether addr parses as a single RFC 5322 address.
func ValidAddress(addr string) bool {
	if strings.TrimSpace(addr) == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	return parsed.Address == addr
}

// InlineImage is an image embedded in the message body and referenced as cid:<ContentID>.
type InlineImage struct {
	ContentID string
	Path      string
}

// Envelope is the immutable snapshot of a message handed to a provider for
// a single send.
type Envelope struct {
	From        Recipient
	To          []Recipient
	Cc          []Recipient
	Bcc         []Recipient
	ReplyTo     []Recipient
	Subject     string
	Body        string // fallback body
	HTMLVersion string
	TextVersion string
	AltBody     string
	IsHTML      bool
	IncludeAlt  bool
	Attachments []string
	Images      []InlineImage
	UserAgent   string
}

// PreferredBody returns the HTML version if set, else the text version, else
// the fallback body. Used by the SMTP relay.
func (e *Envelope) PreferredBody() string {
	switch {
	case e.HTMLVersion != "":
		return e.HTMLVersion
	case e.TextVersion != "":
		return e.TextVersion
	default:
		return e.Body
	}
}

// PrimaryBody returns the body used by the transactional APIs: the fallback
// body when set, otherwise the version matching IsHTML.
func (e *Envelope) PrimaryBody() string {
	if e.Body != "" {
		return e.Body
	}
	if e.IsHTML {
		return e.HTMLVersion
	}
	return e.TextVersion
}

// ContentType returns the MIME type of the primary body.
func (e *Envelope) ContentType() string {
	if e.IsHTML {
		return "text/html"
	}
	return "text/plain"
}

// DetectContentType returns the MIME content type for a file name based on its extension.
func DetectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	case ".csv":
		return "text/csv"
	case ".zip":
		return "application/zip"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ErrorKind classifies a failure. Callers still see one message per failure;
// the kind is for programmatic inspection.
type ErrorKind int

const (
	// KindValidation is a local precondition failure detected before any I/O.
	KindValidation ErrorKind = iota
	// KindSelection means no usable backend was selected.
	KindSelection
	// KindConfig is a backend configuration problem (missing key, bad region).
	KindConfig
	// KindTransport is a connection, auth or client-library failure.
	KindTransport
	// KindRejected means the backend answered but refused the message.
	KindRejected
	// KindAttachment means an attachment or embedded image could not be read.
	KindAttachment
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSelection:
		return "selection"
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// ValidationError represents a validation error with specific field information.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string

	// Message is the validation error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ProviderError represents a failure reported by a delivery backend.
type ProviderError struct {
	// Provider is the name of the provider that generated the error.
	Provider string

	// Kind classifies the failure.
	Kind ErrorKind

	// Message is the human-readable line surfaced to callers.
	Message string

	// StatusCode is the HTTP status code (for HTTP-based providers).
	StatusCode int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a provider error with an explicit message.
func NewProviderError(provider string, kind ErrorKind, message string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  message,
	}
}

// Raised wraps an error raised by a client library using the
// "An error occurred: ..." convention.
func Raised(provider string, kind ErrorKind, cause error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  "An error occurred: " + cause.Error(),
		Cause:    cause,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// KindOf returns the ErrorKind carried by err, defaulting to KindTransport.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindConfig
	}
	return KindTransport
}
