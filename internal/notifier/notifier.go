package notifier

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"github.com/taskminder/taskminder/internal/config"
)

// Sender delivers a single plain-text message to one recipient.
// Implementations are best-effort: a returned error is informational and
// callers are free to ignore it; nothing is retried or queued.
type Sender interface {
	Send(to, subject, body string) error
}

// sendMailFunc matches smtp.SendMail, injectable for tests.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends mail through a single SMTP relay.
type SMTPNotifier struct {
	host     string
	port     string
	from     string
	password string
	log      *logrus.Logger
	sendMail sendMailFunc
}

// New creates an SMTPNotifier from the service configuration.
func New(cfg *config.Config, log *logrus.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		password: cfg.SMTPPassword,
		log:      log,
		sendMail: smtp.SendMail,
	}
}

// Send attempts one delivery. Failures are logged; the returned error
// exists so callers that care (the reminder mailer) can skip bookkeeping,
// but no caller ever propagates it to a user-facing flow.
func (n *SMTPNotifier) Send(to, subject, body string) error {
	if n.from == "" || n.password == "" {
		err := fmt.Errorf("smtp credentials not configured")
		n.log.WithField("to", to).Warn("Email skipped: ", err)
		return err
	}

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + n.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", n.from, n.password, n.host)

	if err := n.sendMail(n.host+":"+n.port, auth, n.from, []string{to}, message); err != nil {
		n.log.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Errorf("Failed to send email: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.log.WithField("to", to).Info("Email sent")
	return nil
}
