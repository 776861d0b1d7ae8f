package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"crovpos/internal/config"

	"github.com/jordan-wright/email"
)

// ErrSMTPNoConfigurado is returned by Send when SMTP_HOST is empty.
var ErrSMTPNoConfigurado = errors.New("smtp: SMTP_HOST no configurado")

// Correo is one outgoing message. Adjunto is a file path, optional.
type Correo struct {
	Para    []string `json:"para"`
	Asunto  string   `json:"asunto"`
	Cuerpo  string   `json:"cuerpo"`
	Adjunto string   `json:"adjunto,omitempty"`
}

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		send:     func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// Send delivers c. Messages without recipients are rejected.
func (m *Mailer) Send(c Correo) error {
	if m.host == "" {
		return ErrSMTPNoConfigurado
	}
	if len(c.Para) == 0 {
		return errors.New("mailer: sin destinatarios")
	}
	e, err := m.armar(c)
	if err != nil {
		return err
	}
	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.send(e, m.addr, auth)
}

func (m *Mailer) armar(c Correo) (*email.Email, error) {
	e := email.NewEmail()
	e.From = m.user
	e.To = c.Para
	e.Subject = c.Asunto
	e.Text = []byte(c.Cuerpo)
	if c.Adjunto != "" {
		if _, err := e.AttachFile(c.Adjunto); err != nil {
			return nil, fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}
	return e, nil
}
