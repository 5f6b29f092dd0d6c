package worker

// evento_worker.go
// Publishes domain events on a Redis pub/sub channel so the admin
// dashboard can follow register activity live without polling.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CanalEventos is the pub/sub channel the live monitor subscribes to.
const CanalEventos = "canal:eventos"

// Event types published on CanalEventos.
const (
	EventoTurnoAberto        = "turno_aberto"
	EventoTurnoFechado       = "turno_fechado"
	EventoTurnoCorrigido     = "turno_corrigido"
	EventoSangriaRegistrada  = "sangria_registrada"
	EventoSangriaEstornada   = "sangria_estornada"
	EventoVendaRegistrada    = "venda_registrada"
	EventoVendaEstornada     = "venda_estornada"
	EventoEnvelopeConfirmado = "envelope_confirmado"
)

// EventoPayload describes a domain event for the live monitor.
type EventoPayload struct {
	Tipo       string    `json:"tipo"`
	TurnoID    string    `json:"turno_id"`
	UsuarioID  string    `json:"usuario_id"`
	Detalhe    string    `json:"detalhe,omitempty"`
	OcorridoEm time.Time `json:"ocorrido_em"`
}

// EventoWorker fans events out to CanalEventos.
type EventoWorker struct {
	rdb *redis.Client
}

func NewEventoWorker(rdb *redis.Client) *EventoWorker {
	return &EventoWorker{rdb: rdb}
}

// Process validates the payload and publishes it on the live channel.
func (w *EventoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EventoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("evento_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if payload.Tipo == "" {
		log.Warn().Msg("evento_worker: empty tipo, skipping")
		return nil
	}

	if err := w.rdb.Publish(ctx, CanalEventos, raw).Err(); err != nil {
		log.Error().Err(err).Str("tipo", payload.Tipo).Msg("evento_worker: publish failed")
		return err
	}
	log.Debug().Str("tipo", payload.Tipo).Str("turno_id", payload.TurnoID).Msg("evento_worker: published")
	return nil
}
