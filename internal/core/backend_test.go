package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBackendKind_Aliases(t *testing.T) {
	t.Parallel()

	cases := map[string]BackendKind{
		"smtp":      BackendSMTP,
		"PHPMailer": BackendSMTP,
		"sendgrid":  BackendSendGrid,
		"Mailgun":   BackendMailgun,
		"aws_ses":   BackendSES,
		" ses ":     BackendSES,
	}
	for name, want := range cases {
		got, err := ParseBackendKind(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
}

func TestParseBackendKind_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ParseBackendKind("carrier-pigeon")
	require.ErrorIs(t, err, ErrUnknownBackend)
	require.Contains(t, err.Error(), "carrier-pigeon")
}

func TestParseBackend_SMTP(t *testing.T) {
	t.Parallel()

	b, err := ParseBackend("smtp", Settings{
		"host":       "smtp.example.com",
		"port":       "465",
		"username":   "user",
		"password":   "secret",
		"encryption": "ssl",
	})
	require.NoError(t, err)

	smtp, ok := b.(SMTPBackend)
	require.True(t, ok)
	require.True(t, smtp.Auth)
	require.Equal(t, "smtp.example.com", smtp.Host)
	require.Equal(t, 465, smtp.Port)
	require.Equal(t, "ssl", smtp.Encryption)
	require.Equal(t, BackendSMTP, b.Kind())
}

func TestParseBackend_SMTPWithoutCredentials(t *testing.T) {
	t.Parallel()

	b, err := ParseBackend("smtp", nil)
	require.NoError(t, err)
	require.Equal(t, SMTPBackend{}, b)
}

func TestParseBackend_InvalidPort(t *testing.T) {
	t.Parallel()

	_, err := ParseBackend("smtp", Settings{"port": "abc"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "port", ve.Field)
}

func TestParseBackend_APIs(t *testing.T) {
	t.Parallel()

	b, err := ParseBackend("sendgrid", Settings{"api_key": "SG.key"})
	require.NoError(t, err)
	require.Equal(t, SendGridBackend{APIKey: "SG.key"}, b)

	b, err = ParseBackend("mailgun", Settings{"api_key": "key", "domain": "mg.example.com"})
	require.NoError(t, err)
	require.Equal(t, MailgunBackend{APIKey: "key", Domain: "mg.example.com"}, b)

	b, err = ParseBackend("ses", Settings{"region": "eu-west-1", "configuration_set": "tx"})
	require.NoError(t, err)
	require.Equal(t, SESBackend{Region: "eu-west-1", ConfigurationSet: "tx"}, b)
}
