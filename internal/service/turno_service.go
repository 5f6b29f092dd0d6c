package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/money"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/recon"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/worker"
)

// Card machine names. Ordering of the Leituras slice passed to the engine is
// stone then pagbank; aplicarResumo maps results back by name.
const (
	MaquinaStone   = "stone"
	MaquinaPagbank = "pagbank"
)

type TurnoService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error)
	Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharTurnoRequest) (*dto.FechamentoResponse, error)
	Recalcular(ctx context.Context, adminID, turnoID uuid.UUID, req dto.RecalcularTurnoRequest) (*dto.FechamentoResponse, error)

	RegistrarSangria(ctx context.Context, usuarioID, turnoID uuid.UUID, req dto.SangriaRequest) (*dto.SangriaResponse, error)
	EstornarSangria(ctx context.Context, usuarioID, turnoID, sangriaID uuid.UUID, isAdmin bool) error
	ListarSangrias(ctx context.Context, turnoID uuid.UUID) ([]dto.SangriaResponse, error)

	ObterAtivo(ctx context.Context, usuarioID uuid.UUID) (*dto.TurnoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.TurnoResponse, error)
	ListarAbertos(ctx context.Context) ([]dto.TurnoResponse, error)
	Historico(ctx context.Context, page, limit int) ([]dto.TurnoResponse, int64, error)
}

type turnoService struct {
	repo        repository.TurnoRepository
	auditoria   repository.AuditoriaRepository
	usuarioRepo repository.UsuarioRepository
	dispatcher  *worker.Dispatcher // nil in unit tests
}

func NewTurnoService(
	repo repository.TurnoRepository,
	auditoria repository.AuditoriaRepository,
	usuarioRepo repository.UsuarioRepository,
	dispatcher *worker.Dispatcher,
) TurnoService {
	return &turnoService{
		repo:        repo,
		auditoria:   auditoria,
		usuarioRepo: usuarioRepo,
		dispatcher:  dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *turnoService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error) {
	if req.SaldoInicial.IsNegative() {
		return nil, validacao("saldo inicial nao pode ser negativo")
	}

	// Guard: one open shift per operator. The partial unique index on
	// turnos(usuario_id) WHERE status='aberto' closes the race this
	// read-then-write leaves open.
	if existing, err := s.repo.FindAbertoPorUsuario(ctx, usuarioID); err == nil && existing != nil {
		return nil, precondicao("operador ja possui um turno aberto")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, traduzErroBanco(err)
	}

	turno := &model.Turno{
		UsuarioID:    usuarioID,
		Status:       model.TurnoAberto,
		SaldoInicial: money.Round(req.SaldoInicial),
		AbertoEm:     time.Now().UTC(),
	}
	for _, raw := range req.Equipe {
		membroID, err := uuid.Parse(raw)
		if err != nil {
			return nil, validacao("id de membro da equipe invalido: %s", raw)
		}
		turno.Equipe = append(turno.Equipe, model.MembroTurno{UsuarioID: membroID})
	}

	if err := s.repo.Create(ctx, turno); err != nil {
		return nil, traduzErroBanco(err)
	}

	s.publicarEvento(ctx, worker.EventoTurnoAberto, turno.ID, usuarioID, "")
	return turnoResponse(turno), nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// Single transaction: lock the shift row, re-sum the sangria sub-ledger as the
// authoritative withdrawal total, resolve card baselines from the latest shift
// closed earlier the same day, run the reconciliation engine and persist the
// summary plus the audit event. A retried close carrying the same idempotency
// key replays the stored summary instead of failing.

func (s *turnoService) Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharTurnoRequest) (*dto.FechamentoResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, validacao("turno_id invalido")
	}

	var turno *model.Turno
	replay := false

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		turno, err = s.repo.FindByIDForUpdateTx(tx, turnoID)
		if err != nil {
			return traduzErroBanco(err)
		}
		if turno.UsuarioID != usuarioID {
			return ErrPermissao
		}

		if turno.Status == model.TurnoFechado {
			if req.ChaveIdempotencia != "" && turno.ChaveFechamento != nil &&
				*turno.ChaveFechamento == req.ChaveIdempotencia {
				replay = true
				return nil
			}
			return precondicao("turno ja esta fechado")
		}

		soma, err := s.repo.SumSangriasTx(tx, turno.ID)
		if err != nil {
			return traduzErroBanco(err)
		}

		agora := time.Now().UTC()
		baselineStone, baselinePagbank, err := s.baselinesDoDia(tx, agora)
		if err != nil {
			return err
		}

		resumo, err := recon.Fechar(recon.Entrada{
			SaldoInicial:    turno.SaldoInicial,
			VendasDinheiro:  turno.VendasDinheiro,
			TotalSangrias:   soma.Total,
			QtdSangrias:     soma.Qtd,
			DinheiroContado: req.DinheiroContado,
			Pix:             req.Pix,
			Leituras: []recon.Leitura{
				{Maquina: MaquinaStone, Acumulado: req.StoneAcumulado, Baseline: baselineStone},
				{Maquina: MaquinaPagbank, Acumulado: req.PagbankAcumulado, Baseline: baselinePagbank},
			},
			Justificativa: derefStr(req.Justificativa),
		})
		if err != nil {
			if errors.Is(err, recon.ErrJustificativaObrigatoria) {
				return validacao("%v", err)
			}
			return err
		}

		aplicarResumo(turno, resumo)
		turno.Status = model.TurnoFechado
		turno.FechadoEm = &agora
		turno.Corrigido = false
		if req.ChaveIdempotencia != "" {
			chave := req.ChaveIdempotencia
			turno.ChaveFechamento = &chave
		}

		if err := s.repo.UpdateTx(tx, turno); err != nil {
			return traduzErroBanco(err)
		}

		return s.auditoria.CreateTx(tx, &model.EventoAuditoria{
			Tipo:            model.AuditoriaFechamento,
			TurnoID:         &turno.ID,
			UsuarioID:       usuarioID,
			DivergenciaNova: decPtr(resumo.Divergencia),
			Justificativa:   resumo.Justificativa,
			Detalhes:        "fechamento de turno",
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	if replay {
		log.Info().Str("turno_id", turno.ID.String()).Msg("fechamento replayed via chave de idempotencia")
		return fechamentoResponse(turno), nil
	}

	s.publicarEvento(ctx, worker.EventoTurnoFechado, turno.ID, usuarioID, "")
	s.alertarDivergencia(ctx, turno)

	return fechamentoResponse(turno), nil
}

// baselinesDoDia resolves the cumulative card baselines for a close happening
// at ref: the readings stored by the latest shift closed earlier the same day,
// or zero when today has no earlier close.
func (s *turnoService) baselinesDoDia(tx *gorm.DB, ref time.Time) (stone, pagbank decimal.Decimal, err error) {
	anterior, findErr := s.repo.FindUltimoFechadoNoDiaTx(tx, ref)
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return decimal.Zero, decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, traduzErroBanco(findErr)
	}
	if anterior.StoneAcumulado != nil {
		stone = *anterior.StoneAcumulado
	}
	if anterior.PagbankAcumulado != nil {
		pagbank = *anterior.PagbankAcumulado
	}
	return stone, pagbank, nil
}

// ── Recalcular ────────────────────────────────────────────────────────────────
// Admin correction. The card baselines are derived from the shift's own stored
// acumulado/real pairs, never looked up again among other shifts, so shifts can
// be corrected in any order without drifting each other's baselines. The whole
// summary is recomputed and overwritten; running the same correction twice
// yields the same stored state.

func (s *turnoService) Recalcular(ctx context.Context, adminID, turnoID uuid.UUID, req dto.RecalcularTurnoRequest) (*dto.FechamentoResponse, error) {
	if req.TotalSangrias != nil && req.TotalSangrias.IsNegative() {
		return nil, validacao("total de sangrias nao pode ser negativo")
	}

	var turno *model.Turno
	var divergenciaAnterior decimal.Decimal

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		turno, err = s.repo.FindByIDForUpdateTx(tx, turnoID)
		if err != nil {
			return traduzErroBanco(err)
		}
		if turno.Status != model.TurnoFechado {
			return precondicao("apenas turnos fechados podem ser recalculados")
		}
		if turno.StoneAcumulado == nil || turno.StoneReal == nil ||
			turno.PagbankAcumulado == nil || turno.PagbankReal == nil ||
			turno.Divergencia == nil {
			return precondicao("turno fechado sem resumo completo")
		}
		divergenciaAnterior = *turno.Divergencia

		baselineStone := recon.DerivarBaseline(*turno.StoneAcumulado, *turno.StoneReal)
		baselinePagbank := recon.DerivarBaseline(*turno.PagbankAcumulado, *turno.PagbankReal)

		soma, err := s.repo.SumSangriasTx(tx, turno.ID)
		if err != nil {
			return traduzErroBanco(err)
		}
		totalSangrias := soma.Total
		if req.TotalSangrias != nil {
			totalSangrias = *req.TotalSangrias
		}

		resumo, err := recon.Fechar(recon.Entrada{
			SaldoInicial:    turno.SaldoInicial,
			VendasDinheiro:  turno.VendasDinheiro,
			TotalSangrias:   totalSangrias,
			QtdSangrias:     soma.Qtd,
			DinheiroContado: req.DinheiroContado,
			Pix:             req.Pix,
			Leituras: []recon.Leitura{
				{Maquina: MaquinaStone, Acumulado: req.StoneAcumulado, Baseline: baselineStone},
				{Maquina: MaquinaPagbank, Acumulado: req.PagbankAcumulado, Baseline: baselinePagbank},
			},
			Justificativa: derefStr(req.Justificativa),
		})
		if err != nil {
			if errors.Is(err, recon.ErrJustificativaObrigatoria) {
				return validacao("%v", err)
			}
			return err
		}

		aplicarResumo(turno, resumo)
		turno.Corrigido = true

		if err := s.repo.UpdateTx(tx, turno); err != nil {
			return traduzErroBanco(err)
		}

		return s.auditoria.CreateTx(tx, &model.EventoAuditoria{
			Tipo:                model.AuditoriaCorrecao,
			TurnoID:             &turno.ID,
			UsuarioID:           adminID,
			DivergenciaAnterior: &divergenciaAnterior,
			DivergenciaNova:     decPtr(resumo.Divergencia),
			Justificativa:       resumo.Justificativa,
			Detalhes:            "correcao administrativa de fechamento",
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publicarEvento(ctx, worker.EventoTurnoCorrigido, turno.ID, adminID, "")
	s.alertarDivergencia(ctx, turno)

	return fechamentoResponse(turno), nil
}

// ── Sangrias ──────────────────────────────────────────────────────────────────

func (s *turnoService) RegistrarSangria(ctx context.Context, usuarioID, turnoID uuid.UUID, req dto.SangriaRequest) (*dto.SangriaResponse, error) {
	if !req.Valor.IsPositive() {
		return nil, validacao("valor da sangria deve ser positivo")
	}
	if strings.TrimSpace(req.Motivo) == "" {
		return nil, validacao("motivo da sangria e obrigatorio")
	}

	var sangria *model.Sangria
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		turno, err := s.repo.FindByIDForUpdateTx(tx, turnoID)
		if err != nil {
			return traduzErroBanco(err)
		}
		if turno.Status != model.TurnoAberto {
			return precondicao("sangrias so podem ser registradas em turno aberto")
		}

		sangria = &model.Sangria{
			TurnoID:       turno.ID,
			Valor:         money.Round(req.Valor),
			Motivo:        req.Motivo,
			RegistradaPor: usuarioID,
		}
		if err := s.repo.CreateSangriaTx(tx, sangria); err != nil {
			return traduzErroBanco(err)
		}
		return s.repo.IncrementTotalSangriasTx(tx, turno.ID, sangria.Valor)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publicarEvento(ctx, worker.EventoSangriaRegistrada, turnoID, usuarioID, sangria.Valor.String())
	return sangriaResponse(sangria), nil
}

// EstornarSangria removes a mistaken withdrawal and applies the compensating
// counter decrement. On a closed shift only admins may retract, and the stored
// summary stays as-is until a correction re-sums the ledger.
func (s *turnoService) EstornarSangria(ctx context.Context, usuarioID, turnoID, sangriaID uuid.UUID, isAdmin bool) error {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		turno, err := s.repo.FindByIDForUpdateTx(tx, turnoID)
		if err != nil {
			return traduzErroBanco(err)
		}
		if turno.Status != model.TurnoAberto && !isAdmin {
			return precondicao("estorno em turno fechado exige um administrador")
		}

		sangria, err := s.repo.FindSangriaTx(tx, turnoID, sangriaID)
		if err != nil {
			return traduzErroBanco(err)
		}

		if err := s.repo.DeleteSangriaTx(tx, sangria.ID); err != nil {
			return traduzErroBanco(err)
		}
		return s.repo.IncrementTotalSangriasTx(tx, turno.ID, sangria.Valor.Neg())
	})
	if txErr != nil {
		return txErr
	}

	s.publicarEvento(ctx, worker.EventoSangriaEstornada, turnoID, usuarioID, "")
	return nil
}

func (s *turnoService) ListarSangrias(ctx context.Context, turnoID uuid.UUID) ([]dto.SangriaResponse, error) {
	sangrias, err := s.repo.ListSangrias(ctx, turnoID)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	out := make([]dto.SangriaResponse, 0, len(sangrias))
	for i := range sangrias {
		out = append(out, *sangriaResponse(&sangrias[i]))
	}
	return out, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *turnoService) ObterAtivo(ctx context.Context, usuarioID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindAbertoPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	return turnoResponse(turno), nil
}

func (s *turnoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	return turnoResponse(turno), nil
}

func (s *turnoService) ListarAbertos(ctx context.Context) ([]dto.TurnoResponse, error) {
	turnos, err := s.repo.ListAbertos(ctx)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	out := make([]dto.TurnoResponse, 0, len(turnos))
	for i := range turnos {
		out = append(out, *turnoResponse(&turnos[i]))
	}
	return out, nil
}

func (s *turnoService) Historico(ctx context.Context, page, limit int) ([]dto.TurnoResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	turnos, total, err := s.repo.ListFechados(ctx, page, limit)
	if err != nil {
		return nil, 0, traduzErroBanco(err)
	}
	out := make([]dto.TurnoResponse, 0, len(turnos))
	for i := range turnos {
		out = append(out, *turnoResponse(&turnos[i]))
	}
	return out, total, nil
}

// ── Post-commit side effects ──────────────────────────────────────────────────
// Events and emails are fire-and-forget: a Redis hiccup must not fail an
// already-committed close.

func (s *turnoService) publicarEvento(ctx context.Context, tipo string, turnoID, usuarioID uuid.UUID, detalhe string) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.EnqueueEvento(ctx, worker.EventoPayload{
		Tipo:       tipo,
		TurnoID:    turnoID.String(),
		UsuarioID:  usuarioID.String(),
		Detalhe:    detalhe,
		OcorridoEm: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("tipo", tipo).Msg("failed to enqueue evento")
	}
}

func (s *turnoService) alertarDivergencia(ctx context.Context, turno *model.Turno) {
	if s.dispatcher == nil || turno.Divergencia == nil {
		return
	}
	if money.DentroDaTolerancia(*turno.Divergencia) {
		return
	}

	operador := turno.UsuarioID.String()
	if s.usuarioRepo != nil {
		if u, err := s.usuarioRepo.FindByID(ctx, turno.UsuarioID); err == nil {
			operador = u.Nome
		}
	}
	fechadoEm := ""
	if turno.FechadoEm != nil {
		fechadoEm = turno.FechadoEm.Format(time.RFC3339)
	}
	err := s.dispatcher.EnqueueAlertaDivergencia(ctx, worker.AlertaDivergenciaPayload{
		TurnoID:       turno.ID.String(),
		Operador:      operador,
		Divergencia:   turno.Divergencia.StringFixed(2),
		Justificativa: derefStr(turno.JustificativaDiverg),
		FechadoEm:     fechadoEm,
	})
	if err != nil {
		log.Error().Err(err).Str("turno_id", turno.ID.String()).Msg("failed to enqueue alerta de divergencia")
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// aplicarResumo overwrites the shift's closing fields with a freshly computed
// summary. The TotalSangrias counter is reconciled to the authoritative value
// used by the engine.
func aplicarResumo(turno *model.Turno, resumo *recon.Resumo) {
	turno.DinheiroContado = decPtr(resumo.DinheiroContado)
	turno.EsperadoDinheiro = decPtr(resumo.EsperadoDinheiro)
	turno.Divergencia = decPtr(resumo.Divergencia)
	turno.JustificativaDiverg = resumo.Justificativa
	turno.Pix = decPtr(resumo.Pix)
	turno.TotalDigital = decPtr(resumo.TotalDigital)
	turno.TotalReceita = decPtr(resumo.TotalReceita)
	turno.SangriasNoFechamento = decPtr(resumo.TotalSangrias)
	turno.TotalSangrias = resumo.TotalSangrias
	qtd := resumo.QtdSangrias
	turno.QtdSangrias = &qtd

	for _, m := range resumo.Maquinas {
		switch m.Maquina {
		case MaquinaStone:
			turno.StoneAcumulado = decPtr(m.Acumulado)
			turno.StoneReal = decPtr(m.Real)
		case MaquinaPagbank:
			turno.PagbankAcumulado = decPtr(m.Acumulado)
			turno.PagbankReal = decPtr(m.Real)
		}
	}
}

func fechamentoResponse(turno *model.Turno) *dto.FechamentoResponse {
	resp := &dto.FechamentoResponse{
		TurnoID:          turno.ID.String(),
		DinheiroContado:  derefDec(turno.DinheiroContado),
		EsperadoDinheiro: derefDec(turno.EsperadoDinheiro),
		Divergencia:      derefDec(turno.Divergencia),
		Justificativa:    turno.JustificativaDiverg,
		Pix:              derefDec(turno.Pix),
		StoneAcumulado:   derefDec(turno.StoneAcumulado),
		PagbankAcumulado: derefDec(turno.PagbankAcumulado),
		ValoresReais: dto.ValoresReais{
			Stone:   derefDec(turno.StoneReal),
			Pagbank: derefDec(turno.PagbankReal),
		},
		TotalSangrias: derefDec(turno.SangriasNoFechamento),
		TotalDigital:  derefDec(turno.TotalDigital),
		TotalReceita:  derefDec(turno.TotalReceita),
		Corrigido:     turno.Corrigido,
	}
	if turno.QtdSangrias != nil {
		resp.QtdSangrias = *turno.QtdSangrias
	}
	if turno.FechadoEm != nil {
		resp.FechadoEm = turno.FechadoEm.Format(time.RFC3339)
	}
	return resp
}

func turnoResponse(turno *model.Turno) *dto.TurnoResponse {
	resp := &dto.TurnoResponse{
		ID:                   turno.ID.String(),
		UsuarioID:            turno.UsuarioID.String(),
		Status:               turno.Status,
		SaldoInicial:         turno.SaldoInicial,
		VendasDinheiro:       turno.VendasDinheiro,
		TotalSangrias:        turno.TotalSangrias,
		ConfirmadoFinanceiro: turno.ConfirmadoFinanceiro,
		AbertoEm:             turno.AbertoEm.Format(time.RFC3339),
	}
	if turno.FechadoEm != nil {
		t := turno.FechadoEm.Format(time.RFC3339)
		resp.FechadoEm = &t
	}
	if turno.Status == model.TurnoFechado {
		resp.Fechamento = fechamentoResponse(turno)
	}
	for i := range turno.Sangrias {
		resp.Sangrias = append(resp.Sangrias, *sangriaResponse(&turno.Sangrias[i]))
	}
	for _, m := range turno.Equipe {
		resp.Equipe = append(resp.Equipe, m.UsuarioID.String())
	}
	return resp
}

func sangriaResponse(s *model.Sangria) *dto.SangriaResponse {
	return &dto.SangriaResponse{
		ID:            s.ID.String(),
		Valor:         s.Valor,
		Motivo:        s.Motivo,
		RegistradaPor: s.RegistradaPor.String(),
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefDec(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}

func decPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
