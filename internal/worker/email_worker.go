package worker

// email_worker.go
// Processes email jobs from QueueEmail: the KPI reports with their PDF
// attached, sent over SMTP to the configured recipients.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crovpos/internal/infra"

	"github.com/rs/zerolog/log"
)

// Sender delivers one email. *infra.Mailer implements it.
type Sender interface {
	Send(c infra.Correo) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer Sender
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer Sender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends the email. A missing SMTP configuration or an unreadable
// payload is not retried.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var correo infra.Correo
	if err := json.Unmarshal(raw, &correo); err != nil {
		return infra.Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if len(correo.Para) == 0 {
		log.Warn().Str("asunto", correo.Asunto).Msg("email_worker: no recipients, skipping")
		return nil
	}

	if err := w.mailer.Send(correo); err != nil {
		if errors.Is(err, infra.ErrSMTPNoConfigurado) {
			return infra.Permanent(err)
		}
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Strs("to", correo.Para).Str("asunto", correo.Asunto).Msg("email_worker: email sent")
	return nil
}
