package unimailer

import (
	"errors"

	"github.com/lattiq/unimailer/internal/core"
)

// Predefined sentinel errors for common cases.
var (
	// ErrNoSender indicates the sender address is empty.
	ErrNoSender = errors.New("sender email address is required")

	// ErrNoRecipient indicates no To recipient was added.
	ErrNoRecipient = errors.New("at least one recipient email address is required")

	// ErrInvalidBackend indicates no usable backend is selected.
	ErrInvalidBackend = errors.New("invalid backend selection")

	// ErrImageNotFound indicates an embedded image path does not reference a file.
	ErrImageNotFound = errors.New("image file does not exist")

	// ErrImageExtension indicates an embedded image has a disallowed extension.
	ErrImageExtension = errors.New("invalid image file extension")

	// ErrAttachmentExtension indicates an attachment is outside the allow-list.
	ErrAttachmentExtension = errors.New("invalid attachment file extension")

	// ErrInvalidEmail indicates an address failed the format check.
	ErrInvalidEmail = errors.New("invalid email address")
)

// Messages reported to callers. Kept verbatim for compatibility with
// existing consumers that match on them.
const (
	msgNoSender         = "Sender email address is required."
	msgNoRecipient      = "At least one recipient email address is required."
	msgInvalidSelection = "Invalid API selection."
	msgImageNotFound    = "Image file does not exist: "
	msgImageExtension   = "Invalid image file extension: "
	msgAttachmentExt    = "Invalid attachment file extension: "
)

// Failure is a single diagnostic produced while composing or sending.
type Failure struct {
	// Kind classifies the failure for programmatic handling.
	Kind ErrorKind

	// Message is the human-readable line.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (f Failure) Error() string {
	return f.Message
}

// Unwrap returns the underlying error.
func (f Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of the most recent Send: success, or an ordered,
// non-empty list of failures.
type Result struct {
	failures []Failure
}

// OK reports whether the send succeeded.
func (r Result) OK() bool {
	return len(r.failures) == 0
}

// Failures returns a copy of the recorded failures.
func (r Result) Failures() []Failure {
	return append([]Failure(nil), r.failures...)
}

// Messages returns one line per failure, in order.
func (r Result) Messages() []string {
	out := make([]string, len(r.failures))
	for i, f := range r.failures {
		out[i] = f.Message
	}
	return out
}

// Err joins the failures into a single error, or returns nil on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.failures))
	for i, f := range r.failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// failureFromError converts an error raised during dispatch into a Failure,
// keeping the provider's own message when it carries one.
func failureFromError(err error) Failure {
	var pe *core.ProviderError
	if errors.As(err, &pe) {
		return Failure{Kind: pe.Kind, Message: pe.Message, Err: err}
	}
	return Failure{
		Kind:    core.KindOf(err),
		Message: "An error occurred: " + err.Error(),
		Err:     err,
	}
}
