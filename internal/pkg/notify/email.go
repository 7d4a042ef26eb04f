package notify

import (
	"marketplace_backend/internal/pkg/config"

	"github.com/wneessen/go-mail"
)

// EmailSender SMTP 邮件发送
type EmailSender struct {
	cfg config.SMTPConfig
}

func NewEmailSender() *EmailSender {
	return &EmailSender{cfg: config.GlobalConfig.SMTP}
}

func (e *EmailSender) Send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From(e.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(e.cfg.Host,
		mail.WithPort(e.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(e.cfg.Username),
		mail.WithPassword(e.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	return client.DialAndSend(msg)
}
