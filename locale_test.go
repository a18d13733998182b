package unimailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		locale, key, want string
	}{
		{"en", "invalid_email", "Invalid email address."},
		{"en", "empty_email", "Email address is empty."},
		{"nl", "invalid_email", "Ongeldig e-mailadres."},
		{"nl-BE", "invalid_email", "Ongeldig e-mailadres."},
		{"en-GB", "empty_email", "Email address is empty."},
		{"de", "invalid_email", "invalid_email"},
		{"not a locale", "invalid_email", "invalid_email"},
		{"en", "missing_key", "missing_key"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Translate(tc.locale, tc.key), "%s/%s", tc.locale, tc.key)
	}
}

func TestWithDetail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Invalid email address: x", withDetail("Invalid email address.", "x"))
	require.Equal(t, "invalid_email: x", withDetail("invalid_email", "x"))
}
