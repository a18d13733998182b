// Package unimailer composes a single email message once and dispatches it
// through one of several interchangeable delivery backends without changing
// the call site.
//
// # Basic Usage
//
//	m, err := unimailer.New(unimailer.DefaultConfig(),
//		unimailer.WithSendGrid(os.Getenv("SENDGRID_API_KEY")),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//
//	m.SetFrom("noreply@example.com", "Example")
//	m.AddTo("user@example.com")
//	m.SetSubject("Welcome")
//	m.SetBody("<h1>Welcome!</h1>")
//
//	if !m.Send(ctx) {
//		for _, e := range m.Errors() {
//			log.Println(e)
//		}
//	}
//
// # Supported Backends
//
//   - SMTP relay (gomail), with attachments and embedded images
//   - SendGrid v3 mail send
//   - Mailgun messages API
//   - AWS SES raw send
//
// # Errors
//
// Send never returns a raised error. Every failure, local or remote, becomes
// one human-readable line in Errors; Result and Err expose the same failures
// with a machine-readable kind. The list is reset at the start of each Send.
//
// A Mailer is not safe for concurrent use.
package unimailer
