package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelope_Bodies(t *testing.T) {
	t.Parallel()

	env := &Envelope{HTMLVersion: "<p>hi</p>", TextVersion: "hi", IsHTML: true}
	require.Equal(t, "<p>hi</p>", env.PreferredBody())
	require.Equal(t, "<p>hi</p>", env.PrimaryBody())
	require.Equal(t, "text/html", env.ContentType())

	env.IsHTML = false
	require.Equal(t, "hi", env.PrimaryBody())
	require.Equal(t, "text/plain", env.ContentType())

	env.Body = "fallback"
	require.Equal(t, "fallback", env.PrimaryBody())
	require.Equal(t, "<p>hi</p>", env.PreferredBody())

	env.HTMLVersion, env.TextVersion = "", ""
	require.Equal(t, "fallback", env.PreferredBody())
}

func TestAddresses(t *testing.T) {
	t.Parallel()

	rs := []Recipient{{Address: "a@example.com", DisplayName: "Ann"}, {Address: "b@example.com"}}
	require.Equal(t, []string{"a@example.com", "b@example.com"}, Addresses(rs))
	require.Empty(t, Addresses(nil))
}

func TestValidAddress(t *testing.T) {
	t.Parallel()

	require.True(t, ValidAddress("user@example.com"))
	require.False(t, ValidAddress(""))
	require.False(t, ValidAddress("not-an-email"))
	require.False(t, ValidAddress("User <user@example.com>"))
	require.False(t, ValidAddress("a@example.com, b@example.com"))
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	require.Equal(t, "application/pdf", DetectContentType("invoice.PDF"))
	require.Equal(t, "image/png", DetectContentType("/tmp/logo.png"))
	require.Equal(t, "application/octet-stream", DetectContentType("blob"))
}

func TestRaised(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Raised("mailgun", KindTransport, cause)

	require.Equal(t, "An error occurred: connection refused", err.Error())
	require.ErrorIs(t, err, cause)
	require.Equal(t, KindTransport, KindOf(err))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindRejected, KindOf(NewProviderError("sendgrid", KindRejected, "SendGrid error: nope")))
	require.Equal(t, KindConfig, KindOf(NewValidationError("region", "AWS region is required")))
	require.Equal(t, KindTransport, KindOf(errors.New("boom")))
	require.Equal(t, "attachment", KindAttachment.String())
}
