package worker

// email_worker.go
// Processes divergence alert jobs from QueueEmail. Every close whose
// divergence falls outside the tolerance generates one alert to the
// admin mailbox. Delivery goes through the SMTP circuit breaker so a
// downed mail server does not pile up blocked workers.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/infra"
)

// AlertaDivergenciaPayload is the job envelope sent to QueueEmail.
type AlertaDivergenciaPayload struct {
	TurnoID       string `json:"turno_id"`
	Operador      string `json:"operador"`
	Divergencia   string `json:"divergencia"`
	Justificativa string `json:"justificativa"`
	FechadoEm     string `json:"fechado_em"`
}

// EmailWorker delivers divergence alerts via SMTP.
type EmailWorker struct {
	mailer      *infra.Mailer
	cb          *infra.CircuitBreaker
	alertaEmail string
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, alertaEmail string) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, alertaEmail: alertaEmail}
}

// Process sends the alert email through the circuit breaker.
// Returns an error so failed deliveries land in the DLQ.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertaDivergenciaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if w.alertaEmail == "" {
		log.Warn().Msg("email_worker: ALERTA_EMAIL not configured, skipping")
		return nil
	}

	subject := fmt.Sprintf("Divergencia de caixa no turno %s", payload.TurnoID)
	body := fmt.Sprintf(
		"Turno %s fechado por %s em %s com divergencia de R$ %s.\nJustificativa: %s\n",
		payload.TurnoID, payload.Operador, payload.FechadoEm,
		payload.Divergencia, payload.Justificativa,
	)

	err := w.cb.Execute(func() error {
		return w.mailer.Send(w.alertaEmail, subject, body)
	})
	if err != nil {
		log.Error().Err(err).Str("turno_id", payload.TurnoID).Msg("email_worker: failed to send alert")
		return err
	}

	log.Info().Str("turno_id", payload.TurnoID).Msg("email_worker: divergence alert sent")
	return nil
}
