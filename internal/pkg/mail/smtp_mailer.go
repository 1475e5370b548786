package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/internal/pkg/env"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends emails via SMTP
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewSMTPSenderFromEnv() *SMTPSender {
	s := &SMTPSender{
		Host:     env.GetEnv("SMTP_HOST", ""),
		Port:     env.GetEnv("SMTP_PORT", "587"),
		Username: env.GetEnv("SMTP_USERNAME", ""),
		Password: env.GetEnv("SMTP_PASSWORD", ""),
		From:     env.GetEnv("SMTP_SENDER", ""),
	}
	if s.From == "" {
		s.From = fmt.Sprintf("no-reply@%s", env.GetEnv("PUBLIC_DOMAIN", "localhost"))
		log.Warnf("[Mail] SMTP_SENDER not set, using default sender: %s", s.From)
	}
	return s
}

func (s *SMTPSender) Send(to, subject, body string) error {
	if s.Host == "" {
		return fmt.Errorf("SMTP_HOST is not set")
	}

	var auth smtp.Auth
	if s.Username != "" && s.Password != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	err := smtp.SendMail(addr, auth, s.From, []string{to}, BuildMessage(s.From, to, subject, body))
	if err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
	} else {
		log.Infof("[Mail] email sent to %s via %s", to, addr)
	}
	return err
}

// BuildMessage renders the RFC 5322 message for an HTML body.
func BuildMessage(from, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)
}
