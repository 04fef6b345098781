package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail (verification links, password resets,
// welcome mail with temporary credentials) over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *logrus.Logger
}

// NewMailer reads SMTP_HOST/SMTP_PORT/SMTP_USER/SMTP_PASSWORD/MAIL_FROM.
// When SMTP_HOST is unset the mailer runs disabled: sends are logged and
// dropped so local development and tests work without a mail server.
func NewMailer(logger *logrus.Logger) *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return &Mailer{logger: logger}
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = user
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, os.Getenv("SMTP_PASSWORD")),
		from:   from,
		logger: logger,
	}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.dialer != nil
}

func (m *Mailer) Send(to string, subject string, body string) error {
	if !m.Enabled() {
		if m != nil && m.logger != nil {
			m.logger.WithFields(logrus.Fields{
				"module":  "mail",
				"to":      to,
				"subject": subject,
			}).Info("mail disabled; message dropped")
		}
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
