package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/lattiq/unimailer"
)

var app *cli.App

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Config file (yaml, json or toml)",
	}
	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "Backend override: smtp, sendgrid, mailgun or aws_ses",
	}
	localeFlag = &cli.StringFlag{
		Name:  "locale",
		Usage: "Locale for localized messages",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging on stderr",
	}
	fromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "Sender address",
		Required: true,
	}
	fromNameFlag = &cli.StringFlag{
		Name:  "from-name",
		Usage: "Sender display name",
	}
	toFlag = &cli.StringSliceFlag{
		Name:  "to",
		Usage: "Recipient address (repeatable)",
	}
	ccFlag = &cli.StringSliceFlag{
		Name:  "cc",
		Usage: "Carbon copy address (repeatable)",
	}
	bccFlag = &cli.StringSliceFlag{
		Name:  "bcc",
		Usage: "Blind carbon copy address (repeatable)",
	}
	replyToFlag = &cli.StringSliceFlag{
		Name:  "reply-to",
		Usage: "Reply-to address (repeatable)",
	}
	subjectFlag = &cli.StringFlag{
		Name:  "subject",
		Usage: "Subject line",
	}
	bodyFlag = &cli.StringFlag{
		Name:  "body",
		Usage: "Primary body",
	}
	htmlFlag = &cli.StringFlag{
		Name:  "html",
		Usage: "HTML version",
	}
	textFlag = &cli.StringFlag{
		Name:  "text",
		Usage: "Plain-text version",
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Send the primary body as text/plain",
	}
	altFlag = &cli.StringFlag{
		Name:  "alt",
		Usage: "Plain-text alternative body",
	}
	attachFlag = &cli.StringSliceFlag{
		Name:  "attach",
		Usage: "File to attach (repeatable)",
	}
	embedFlag = &cli.StringSliceFlag{
		Name:  "embed",
		Usage: "Image to embed as cid=path (repeatable)",
	}
)

func init() {
	app = cli.NewApp()
	app.Name = "unimail"
	app.Usage = "send one email through SMTP, SendGrid, Mailgun or SES"
	app.Flags = []cli.Flag{
		configFileFlag,
		backendFlag,
		localeFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:  "send",
			Usage: "Compose and send a message",
			Flags: []cli.Flag{
				fromFlag, fromNameFlag, toFlag, ccFlag, bccFlag, replyToFlag,
				subjectFlag, bodyFlag, htmlFlag, textFlag, plainFlag, altFlag,
				attachFlag, embedFlag,
			},
			Action: send,
		},
		{
			Name:  "version",
			Usage: "Print version information",
			Action: func(ctx *cli.Context) error {
				fmt.Println(unimailer.GetVersionInfo().String())
				return nil
			},
		},
	}
}

func loadConfig(ctx *cli.Context) (unimailer.Config, error) {
	cfg := unimailer.DefaultConfig()
	if path := ctx.String(configFileFlag.Name); path != "" {
		loaded, err := unimailer.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if backend := ctx.String(backendFlag.Name); backend != "" {
		cfg.Backend.Type = backend
	}
	if locale := ctx.String(localeFlag.Name); locale != "" {
		cfg.Locale = locale
	}
	if ctx.Bool(debugFlag.Name) {
		cfg.Logging = unimailer.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}
	}
	return cfg, nil
}

func send(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	m, err := unimailer.New(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := compose(ctx, m); err != nil {
		return err
	}

	if !m.Send(ctx.Context) {
		for _, e := range m.Errors() {
			fmt.Fprintln(os.Stderr, e)
		}
		return cli.Exit("Failed to send email.", 1)
	}

	fmt.Println("Email sent successfully!")
	return nil
}

func compose(ctx *cli.Context, m *unimailer.Mailer) error {
	m.SetFrom(ctx.String(fromFlag.Name), ctx.String(fromNameFlag.Name))
	m.AddTo(ctx.StringSlice(toFlag.Name)...)
	m.AddCc(ctx.StringSlice(ccFlag.Name)...)
	m.AddBcc(ctx.StringSlice(bccFlag.Name)...)
	m.AddReplyTo(ctx.StringSlice(replyToFlag.Name)...)
	m.SetSubject(ctx.String(subjectFlag.Name))
	m.SetBody(ctx.String(bodyFlag.Name))
	m.AddHTMLVersion(ctx.String(htmlFlag.Name))
	m.AddTextVersion(ctx.String(textFlag.Name))
	m.SetHTML(!ctx.Bool(plainFlag.Name))

	if alt := ctx.String(altFlag.Name); alt != "" {
		m.SetAltBodyText(alt)
	} else {
		m.SetAltBody(false)
	}

	for _, path := range ctx.StringSlice(attachFlag.Name) {
		m.AddAttachment(path)
	}

	for _, value := range ctx.StringSlice(embedFlag.Name) {
		cid, path, err := parseEmbed(value)
		if err != nil {
			return err
		}
		if !m.EmbedImage(path, cid) {
			return errors.New(strings.Join(m.Errors(), "; "))
		}
	}
	return nil
}

// parseEmbed splits a cid=path flag value.
func parseEmbed(value string) (cid, path string, err error) {
	cid, path, ok := strings.Cut(value, "=")
	if !ok || cid == "" || path == "" {
		return "", "", fmt.Errorf("invalid embed %q: want cid=path", value)
	}
	return cid, path, nil
}

func main() {
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
