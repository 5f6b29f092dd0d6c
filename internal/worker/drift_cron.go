package worker

// drift_cron.go
// Background goroutine that periodically compares the incremental
// total_sangrias counter of every open shift against an authoritative
// SUM over the sangria sub-ledger. The counter is a cache: closes and
// corrections always re-sum, but a drifted counter means some write
// path is broken, so drift is logged and recorded in the audit trail.

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
)

const driftTickInterval = 5 * time.Minute

// DriftCronConfig holds the dependencies for the consistency goroutine.
type DriftCronConfig struct {
	TurnoRepo     repository.TurnoRepository
	AuditoriaRepo repository.AuditoriaRepository
}

// StartDriftCron launches a goroutine that ticks every 5 minutes and
// checks counter consistency on all open shifts. Respects the context
// for graceful shutdown.
func StartDriftCron(ctx context.Context, cfg DriftCronConfig) {
	go func() {
		ticker := time.NewTicker(driftTickInterval)
		defer ticker.Stop()

		log.Info().Msg("drift_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("drift_cron: shutting down")
				return
			case <-ticker.C:
				checkDrift(ctx, cfg)
			}
		}
	}()
}

func checkDrift(ctx context.Context, cfg DriftCronConfig) {
	turnos, err := cfg.TurnoRepo.ListAbertos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("drift_cron: failed to list open shifts")
		return
	}

	for i := range turnos {
		turno := &turnos[i]

		soma, err := cfg.TurnoRepo.SumSangrias(ctx, turno.ID)
		if err != nil {
			log.Error().Err(err).Str("turno_id", turno.ID.String()).Msg("drift_cron: failed to sum sangrias")
			continue
		}

		if turno.TotalSangrias.Equal(soma.Total) {
			continue
		}

		detalhe := fmt.Sprintf(
			"contador total_sangrias=%s, soma real=%s (qtd=%d)",
			turno.TotalSangrias.String(),
			soma.Total.String(), soma.Qtd,
		)
		log.Warn().
			Str("turno_id", turno.ID.String()).
			Str("detalhe", detalhe).
			Msg("drift_cron: counter drift detected")

		// System-generated event: UsuarioID stays zero
		evento := &model.EventoAuditoria{
			Tipo:     model.AuditoriaDivergContad,
			TurnoID:  &turno.ID,
			Detalhes: detalhe,
		}
		if err := cfg.AuditoriaRepo.Create(ctx, evento); err != nil {
			log.Error().Err(err).Str("turno_id", turno.ID.String()).Msg("drift_cron: failed to record audit event")
		}
	}
}
