package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Links carries the frontend URLs that tokens get appended to.
type Links struct {
	ActivationURL string
	RecoveryURL   string
}

type Mail struct {
	from  string
	auth  smtp.Auth
	addr  string
	links Links
}

func New(address, password, host, port string, links Links) *Mail {
	return &Mail{
		from:  address,
		auth:  smtp.PlainAuth("", address, password, host),
		addr:  host + ":" + port,
		links: links,
	}
}

func (m *Mail) send(to, subject, body string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", m.from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(sb.String())); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mail) SendActivationToken(token, to string) error {
	body := fmt.Sprintf(
		"Welcome to LearnHub!\n\nActivate your account by following this link:\n\n%s?token=%s\n",
		m.links.ActivationURL, token,
	)
	return m.send(to, "Activate your account", body)
}

func (m *Mail) SendRecoveryToken(token, to string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset it by following this link:\n\n%s?token=%s\n\nIf you didn't request this, ignore this mail.\n",
		m.links.RecoveryURL, token,
	)
	return m.send(to, "Reset your password", body)
}
