package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/storepulse/api/internal/config"
)

// Mailer delivers one-time passcodes over email.
type Mailer interface {
	SendOtpEmail(to, code string) error
}

type mailer struct {
	host          string
	port          string
	from          string
	fromName      string
	username      string
	password      string
	expiryMinutes int
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:          cfg.SMTPHost,
		port:          cfg.SMTPPort,
		from:          cfg.SMTPFrom,
		fromName:      cfg.SMTPFromName,
		username:      cfg.SMTPUsername,
		password:      cfg.SMTPPassword,
		expiryMinutes: cfg.OTPExpiryMinutes,
	}
}

func (m *mailer) SendOtpEmail(to, code string) error {
	subject := fmt.Sprintf("Your verification code for %s", m.fromName)
	body := fmt.Sprintf(
		"Your verification code is: %s\r\n\r\n"+
			"This code expires in %d minutes. If you did not request it, you can ignore this email.",
		code, m.expiryMinutes,
	)
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.fromName, m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
