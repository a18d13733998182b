package sendgrid

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/require"

	"github.com/lattiq/unimailer/internal/core"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testEnvelope() *core.Envelope {
	return &core.Envelope{
		From:        core.Recipient{Address: "from@example.com", DisplayName: "Sender"},
		To:          []core.Recipient{{Address: "to@example.com"}},
		Bcc:         []core.Recipient{{Address: "bcc@example.com"}},
		Subject:     "Hi",
		HTMLVersion: "<b>hi</b>",
		IsHTML:      true,
		IncludeAlt:  true,
	}
}

func TestBuildMessage_Content(t *testing.T) {
	t.Parallel()

	env := testEnvelope()
	env.AltBody = "hi"
	env.ReplyTo = []core.Recipient{{Address: "r1@example.com"}, {Address: "r2@example.com"}}

	msg, err := BuildMessage(env)
	require.NoError(t, err)

	require.Equal(t, "from@example.com", msg.From.Address)
	require.Empty(t, msg.From.Name)
	require.Equal(t, "r1@example.com", msg.ReplyTo.Address)
	require.Len(t, msg.Personalizations, 1)
	require.Equal(t, "to@example.com", msg.Personalizations[0].To[0].Address)
	require.Equal(t, "bcc@example.com", msg.Personalizations[0].BCC[0].Address)

	require.Len(t, msg.Content, 2)
	require.Equal(t, "text/plain", msg.Content[0].Type)
	require.Equal(t, "hi", msg.Content[0].Value)
	require.Equal(t, "text/html", msg.Content[1].Type)
	require.Equal(t, "<b>hi</b>", msg.Content[1].Value)
}

func TestBuildMessage_PlainTextFirstOnTheWire(t *testing.T) {
	t.Parallel()

	env := testEnvelope()
	env.AltBody = "plain alt"

	msg, err := BuildMessage(env)
	require.NoError(t, err)

	var body struct {
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(mail.GetRequestBody(msg), &body))
	require.Len(t, body.Content, 2)
	require.Equal(t, "text/plain", body.Content[0].Type)
	require.Equal(t, "text/html", body.Content[1].Type)
}

func TestBuildMessage_PlainPrimaryKeepsOrder(t *testing.T) {
	t.Parallel()

	env := testEnvelope()
	env.IsHTML = false
	env.Body = "primary"
	env.AltBody = "alt"

	msg, err := BuildMessage(env)
	require.NoError(t, err)
	require.Len(t, msg.Content, 2)
	require.Equal(t, "primary", msg.Content[0].Value)
	require.Equal(t, "alt", msg.Content[1].Value)
}

func TestBuildMessage_NoEmptyAlt(t *testing.T) {
	t.Parallel()

	msg, err := BuildMessage(testEnvelope())
	require.NoError(t, err)
	require.Len(t, msg.Content, 1)
}

func TestBuildMessage_InlineImages(t *testing.T) {
	t.Parallel()

	logo := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(logo, pngHeader, 0o600))

	env := testEnvelope()
	env.Attachments = []string{logo}
	env.Images = []core.InlineImage{{ContentID: "logo", Path: logo}}

	msg, err := BuildMessage(env)
	require.NoError(t, err)

	require.Len(t, msg.Attachments, 2)
	require.Equal(t, "attachment", msg.Attachments[0].Disposition)
	require.Equal(t, "inline", msg.Attachments[1].Disposition)
	require.Equal(t, "logo", msg.Attachments[1].ContentID)
	require.Equal(t, "image/png", msg.Attachments[1].Type)
	require.Equal(t, base64.StdEncoding.EncodeToString(pngHeader), msg.Attachments[1].Content)
}

func TestBuildMessage_InlineTypeFromContents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	misnamed := filepath.Join(dir, "photo.dat")
	require.NoError(t, os.WriteFile(misnamed, pngHeader, 0o600))
	opaque := filepath.Join(dir, "banner.gif")
	require.NoError(t, os.WriteFile(opaque, []byte{0x00, 0x01, 0x02, 0x03}, 0o600))

	env := testEnvelope()
	env.Images = []core.InlineImage{
		{ContentID: "photo", Path: misnamed},
		{ContentID: "banner", Path: opaque},
	}

	msg, err := BuildMessage(env)
	require.NoError(t, err)

	require.Len(t, msg.Attachments, 2)
	require.Equal(t, "image/png", msg.Attachments[0].Type)
	require.Equal(t, "image/gif", msg.Attachments[1].Type)
}

func TestBuildMessage_UnreadableAttachment(t *testing.T) {
	t.Parallel()

	env := testEnvelope()
	env.Attachments = []string{"/nonexistent/file.pdf"}

	_, err := BuildMessage(env)
	require.Equal(t, core.KindAttachment, core.KindOf(err))
}

func TestSend(t *testing.T) {
	t.Parallel()

	var (
		path, auth string
		payload    map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, auth = r.URL.Path, r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p, err := NewProvider(core.SendGridBackend{APIKey: "SG.key", BaseURL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, p.Send(context.Background(), testEnvelope()))
	require.Equal(t, "/v3/mail/send", path)
	require.Equal(t, "Bearer SG.key", auth)
	require.Equal(t, "Hi", payload["subject"])
}

func TestSend_NonAcceptedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}))
	defer srv.Close()

	p, err := NewProvider(core.SendGridBackend{APIKey: "SG.key", BaseURL: srv.URL})
	require.NoError(t, err)

	err = p.Send(context.Background(), testEnvelope())

	var pe *core.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "SendGrid error: bad request", pe.Message)
	require.Equal(t, http.StatusBadRequest, pe.StatusCode)
	require.Equal(t, core.KindRejected, pe.Kind)
}

func TestSend_OKIsNotAccepted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	p, err := NewProvider(core.SendGridBackend{APIKey: "SG.key", BaseURL: srv.URL})
	require.NoError(t, err)

	err = p.Send(context.Background(), testEnvelope())
	require.EqualError(t, err, "SendGrid error: ok")
}
