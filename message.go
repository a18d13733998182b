package unimailer

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lattiq/unimailer/internal/core"
)

// allowedImageExtensions lists the extensions accepted by EmbedImage.
var allowedImageExtensions = []string{"jpg", "jpeg", "png", "gif"}

// message holds the composed content. Setters perform no validation.
type message struct {
	fromAddress string
	fromName    string

	to      []string
	cc      []string
	bcc     []string
	replyTo []string

	subject     string
	body        string
	htmlVersion string
	textVersion string
	altBody     string
	isHTML      bool
	includeAlt  bool

	attachments        []string
	allowedAttachments []string

	images     map[string]string
	imageOrder []string
}

func newMessage() message {
	return message{
		isHTML:     true,
		includeAlt: true,
		images:     make(map[string]string),
	}
}

// SetFrom sets the sender, replacing any previous one.
func (m *Mailer) SetFrom(address, name string) {
	m.fromAddress = address
	m.fromName = name
}

// AddTo appends primary recipients. Duplicates are kept.
func (m *Mailer) AddTo(addresses ...string) {
	m.to = append(m.to, addresses...)
}

// AddCc appends carbon copy recipients.
func (m *Mailer) AddCc(addresses ...string) {
	m.cc = append(m.cc, addresses...)
}

// AddBcc appends blind carbon copy recipients.
func (m *Mailer) AddBcc(addresses ...string) {
	m.bcc = append(m.bcc, addresses...)
}

// AddReplyTo appends reply-to addresses.
func (m *Mailer) AddReplyTo(addresses ...string) {
	m.replyTo = append(m.replyTo, addresses...)
}

// SetSubject sets the subject line.
func (m *Mailer) SetSubject(subject string) {
	m.subject = subject
}

// SetBody sets the fallback body. The transactional APIs send it as the
// primary body; the SMTP relay uses it only when neither version is set.
func (m *Mailer) SetBody(body string) {
	m.body = body
}

// AddHTMLVersion sets the HTML body.
func (m *Mailer) AddHTMLVersion(html string) {
	m.htmlVersion = html
}

// AddTextVersion sets the plain-text body.
func (m *Mailer) AddTextVersion(text string) {
	m.textVersion = text
}

// SetHTML marks the primary body as HTML. Defaults to true.
func (m *Mailer) SetHTML(isHTML bool) {
	m.isHTML = isHTML
}

// SetAltBody toggles the plain-text alternative. Defaults to true.
func (m *Mailer) SetAltBody(include bool) {
	m.includeAlt = include
}

// SetAltBodyText sets the plain-text alternative body.
func (m *Mailer) SetAltBodyText(text string) {
	m.altBody = text
}

// AddAttachment appends a file path to attach. The file is read at send time.
func (m *Mailer) AddAttachment(path string) {
	m.attachments = append(m.attachments, path)
}

// SetAllowedAttachments restricts attachment extensions (without the dot,
// case-insensitive). An empty list allows everything.
func (m *Mailer) SetAllowedAttachments(extensions ...string) {
	m.allowedAttachments = m.allowedAttachments[:0]
	for _, ext := range extensions {
		m.allowedAttachments = append(m.allowedAttachments, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
}

// SetLanguage sets the locale used by TranslateErrorMessage and ValidateEmail.
func (m *Mailer) SetLanguage(locale string) {
	m.locale = locale
}

// Language returns the current locale.
func (m *Mailer) Language() string {
	return m.locale
}

// EmbedImage registers the image at path under contentID for use as
// cid:<contentID> in the HTML body. The file must exist and have a jpg,
// jpeg, png or gif extension; otherwise an error is recorded and false is
// returned. Re-embedding a content ID replaces its path.
func (m *Mailer) EmbedImage(path, contentID string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		m.fail(Failure{
			Kind:    KindValidation,
			Message: msgImageNotFound + path,
			Err:     fmt.Errorf("%w: %s", ErrImageNotFound, path),
		})
		return false
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !slices.Contains(allowedImageExtensions, strings.ToLower(ext)) {
		m.fail(Failure{
			Kind:    KindValidation,
			Message: msgImageExtension + ext,
			Err:     fmt.Errorf("%w: %q", ErrImageExtension, ext),
		})
		return false
	}

	m.setDefaults()
	if _, ok := m.images[contentID]; !ok {
		m.imageOrder = append(m.imageOrder, contentID)
	}
	m.images[contentID] = path
	return true
}

// EmbeddedImages returns a copy of the content-id to path mapping.
func (m *Mailer) EmbeddedImages() map[string]string {
	return maps.Clone(m.images)
}

// TranslateErrorMessage returns the message for key in the current locale,
// or key itself when no translation exists.
func (m *Mailer) TranslateErrorMessage(key string) string {
	return Translate(cmp.Or(m.locale, defaultLocale), key)
}

// ValidateEmail checks that address is a single well-formed address,
// recording a localized error when it is not. Send does not call it.
func (m *Mailer) ValidateEmail(address string) bool {
	if strings.TrimSpace(address) == "" {
		m.fail(Failure{
			Kind:    KindValidation,
			Message: m.TranslateErrorMessage("empty_email"),
			Err:     ErrInvalidEmail,
		})
		return false
	}

	if !core.ValidAddress(address) {
		m.fail(Failure{
			Kind:    KindValidation,
			Message: withDetail(m.TranslateErrorMessage("invalid_email"), address),
			Err:     fmt.Errorf("%w: %s", ErrInvalidEmail, address),
		})
		return false
	}

	return true
}

// validate checks the send preconditions, recording one failure per
// violated condition.
func (m *Mailer) validate() bool {
	valid := true

	if m.fromAddress == "" {
		m.fail(Failure{Kind: KindValidation, Message: msgNoSender, Err: ErrNoSender})
		valid = false
	}

	if len(m.to) == 0 {
		m.fail(Failure{Kind: KindValidation, Message: msgNoRecipient, Err: ErrNoRecipient})
		valid = false
	}

	if len(m.allowedAttachments) > 0 {
		for _, path := range m.attachments {
			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			if !slices.Contains(m.allowedAttachments, strings.ToLower(ext)) {
				m.fail(Failure{
					Kind:    KindValidation,
					Message: msgAttachmentExt + ext,
					Err:     fmt.Errorf("%w: %s", ErrAttachmentExtension, path),
				})
				valid = false
			}
		}
	}

	return valid
}
