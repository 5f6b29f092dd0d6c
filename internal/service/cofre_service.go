package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/money"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/worker"
)

type CofreService interface {
	// ConfirmarEnvelope moves a closed shift's counted cash into the vault
	// ledger. Admin only; once per shift.
	ConfirmarEnvelope(ctx context.Context, adminID, turnoID uuid.UUID) (*dto.MovimentoResponse, error)
	RegistrarDespesa(ctx context.Context, adminID uuid.UUID, req dto.DespesaRequest) (*dto.MovimentoResponse, error)
	Saldo(ctx context.Context) (*dto.SaldoResponse, error)
	ListarMovimentos(ctx context.Context, page, limit int) (*dto.MovimentoListResponse, error)
	// EnvelopeDoTurno returns the vault entry created for a shift, if any.
	EnvelopeDoTurno(ctx context.Context, turnoID uuid.UUID) (*dto.MovimentoResponse, error)
}

type cofreService struct {
	repo       repository.MovimentoRepository
	turnoRepo  repository.TurnoRepository
	auditoria  repository.AuditoriaRepository
	dispatcher *worker.Dispatcher // nil in unit tests
}

func NewCofreService(
	repo repository.MovimentoRepository,
	turnoRepo repository.TurnoRepository,
	auditoria repository.AuditoriaRepository,
	dispatcher *worker.Dispatcher,
) CofreService {
	return &cofreService{
		repo:       repo,
		turnoRepo:  turnoRepo,
		auditoria:  auditoria,
		dispatcher: dispatcher,
	}
}

// ── ConfirmarEnvelope ─────────────────────────────────────────────────────────
// The entrada amount is the counted cash stored at close, not the expected
// value: the vault receives what is physically in the envelope. The partial
// unique index on movimento_financeiros(turno_id) backs the once-per-shift
// rule under concurrent confirmations.

func (s *cofreService) ConfirmarEnvelope(ctx context.Context, adminID, turnoID uuid.UUID) (*dto.MovimentoResponse, error) {
	var mov *model.MovimentoFinanceiro

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		turno, err := s.turnoRepo.FindByIDForUpdateTx(tx, turnoID)
		if err != nil {
			return traduzErroBanco(err)
		}
		if turno.Status != model.TurnoFechado {
			return precondicao("apenas turnos fechados podem ter o envelope confirmado")
		}
		if turno.ConfirmadoFinanceiro {
			return precondicao("envelope deste turno ja foi confirmado")
		}
		if turno.DinheiroContado == nil {
			return precondicao("turno fechado sem dinheiro contado registrado")
		}

		agora := time.Now().UTC()
		mov = &model.MovimentoFinanceiro{
			Direcao:       model.MovimentoEntrada,
			Categoria:     model.CategoriaEnvelope,
			Descricao:     fmt.Sprintf("envelope do turno %s", turno.ID),
			Valor:         *turno.DinheiroContado,
			Data:          agora,
			TurnoID:       &turno.ID,
			RegistradoPor: adminID,
		}
		if err := s.repo.CreateTx(tx, mov); err != nil {
			return traduzErroBanco(err)
		}

		turno.ConfirmadoFinanceiro = true
		if err := s.turnoRepo.UpdateTx(tx, turno); err != nil {
			return traduzErroBanco(err)
		}

		return s.auditoria.CreateTx(tx, &model.EventoAuditoria{
			Tipo:      model.AuditoriaConfirmacao,
			TurnoID:   &turno.ID,
			UsuarioID: adminID,
			Detalhes:  fmt.Sprintf("envelope de R$ %s confirmado no cofre", mov.Valor.StringFixed(2)),
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.dispatcher != nil {
		err := s.dispatcher.EnqueueEvento(ctx, worker.EventoPayload{
			Tipo:       worker.EventoEnvelopeConfirmado,
			TurnoID:    turnoID.String(),
			UsuarioID:  adminID.String(),
			Detalhe:    mov.Valor.String(),
			OcorridoEm: time.Now().UTC(),
		})
		if err != nil {
			log.Error().Err(err).Str("tipo", worker.EventoEnvelopeConfirmado).Msg("failed to enqueue evento")
		}
	}

	return movimentoResponse(mov), nil
}

// ── RegistrarDespesa ──────────────────────────────────────────────────────────

func (s *cofreService) RegistrarDespesa(ctx context.Context, adminID uuid.UUID, req dto.DespesaRequest) (*dto.MovimentoResponse, error) {
	if !req.Valor.IsPositive() {
		return nil, validacao("valor da despesa deve ser positivo")
	}

	data := time.Now().UTC()
	if req.Data != "" {
		parsed, err := time.Parse("2006-01-02", req.Data)
		if err != nil {
			return nil, validacao("data invalida, use o formato 2006-01-02")
		}
		data = parsed
	}

	mov := &model.MovimentoFinanceiro{
		Direcao:       model.MovimentoSaida,
		Categoria:     model.CategoriaDespesa,
		Descricao:     req.Descricao,
		Valor:         money.Round(req.Valor),
		Data:          data,
		RegistradoPor: adminID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return traduzErroBanco(s.repo.CreateTx(tx, mov))
	})
	if txErr != nil {
		return nil, txErr
	}

	return movimentoResponse(mov), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cofreService) Saldo(ctx context.Context) (*dto.SaldoResponse, error) {
	saldo, err := s.repo.Saldo(ctx)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	return &dto.SaldoResponse{Saldo: saldo}, nil
}

func (s *cofreService) ListarMovimentos(ctx context.Context, page, limit int) (*dto.MovimentoListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	movs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, traduzErroBanco(err)
	}

	data := make([]dto.MovimentoResponse, 0, len(movs))
	for i := range movs {
		data = append(data, *movimentoResponse(&movs[i]))
	}
	return &dto.MovimentoListResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *cofreService) EnvelopeDoTurno(ctx context.Context, turnoID uuid.UUID) (*dto.MovimentoResponse, error) {
	mov, err := s.repo.FindByTurno(ctx, turnoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, naoEncontrado("nenhum envelope confirmado para este turno")
		}
		return nil, traduzErroBanco(err)
	}
	return movimentoResponse(mov), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func movimentoResponse(m *model.MovimentoFinanceiro) *dto.MovimentoResponse {
	resp := &dto.MovimentoResponse{
		ID:        m.ID.String(),
		Direcao:   m.Direcao,
		Categoria: m.Categoria,
		Descricao: m.Descricao,
		Valor:     m.Valor,
		Data:      m.Data.Format("2006-01-02"),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.TurnoID != nil {
		id := m.TurnoID.String()
		resp.TurnoID = &id
	}
	return resp
}
