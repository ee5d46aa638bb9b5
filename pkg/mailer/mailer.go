package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
)

var ErrMailDisabled = errors.New("mail sender is not configured")

// Mailer sends a single HTML message.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, htmlBody string) error
}

type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	opts     Options
	enabled  bool
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(opts Options) Mailer {
	enabled := opts.Host != "" && opts.Port != "" && opts.Username != "" && opts.Password != ""
	if !enabled {
		slog.Warn("mailer disabled: missing SMTP settings")
	}

	return &smtpMailer{
		opts:     opts,
		enabled:  enabled,
		sendMail: smtp.SendMail,
	}
}

func (m *smtpMailer) Send(ctx context.Context, to string, subject string, htmlBody string) error {
	if !m.enabled {
		return ErrMailDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Host)
	addr := fmt.Sprintf("%s:%s", m.opts.Host, m.opts.Port)

	if err := m.sendMail(addr, auth, m.opts.Username, []string{to}, buildMessage(m.opts.From, m.opts.Username, to, subject, htmlBody)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	slog.Info("mail sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

func buildMessage(fromName, fromAddr, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromAddr)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

const VerificationSubject = "[NeedU] Your sign-up verification code"

var verificationTemplate = template.Must(template.New("verify").Parse(`<html>
<body>
  <div>
    <h1 style="color:black">Welcome to NeedU.</h1>
    <br>
    <p style="color:black">Here is your sign-up verification code.</p>
    <p style="color:black">Enter the code below to finish verifying your email.</p>
    <h2>{{.Code}}</h2>
  </div>
</body>
</html>`))

// RenderVerificationEmail renders the HTML body carrying a verification code.
func RenderVerificationEmail(code string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTemplate.Execute(&buf, struct{ Code string }{Code: code}); err != nil {
		return "", fmt.Errorf("failed to render verification email: %w", err)
	}
	return buf.String(), nil
}
