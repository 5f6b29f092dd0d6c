package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/money"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/worker"
)

type VendaService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	Estornar(ctx context.Context, usuarioID, vendaID uuid.UUID, isAdmin bool) error
	Listar(ctx context.Context, filter repository.VendaFilter) (*dto.VendaListResponse, error)
}

type vendaService struct {
	repo        repository.VendaRepository
	turnoRepo   repository.TurnoRepository
	produtoRepo repository.ProdutoRepository
	dispatcher  *worker.Dispatcher // nil in unit tests
}

func NewVendaService(
	repo repository.VendaRepository,
	turnoRepo repository.TurnoRepository,
	produtoRepo repository.ProdutoRepository,
	dispatcher *worker.Dispatcher,
) VendaService {
	return &vendaService{
		repo:        repo,
		turnoRepo:   turnoRepo,
		produtoRepo: produtoRepo,
		dispatcher:  dispatcher,
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Price and name are snapshotted from the catalog at sale time. A cash sale
// also bumps the shift's running cash counter inside the same transaction, so
// the live monitor and the eventual close see consistent numbers.

func (s *vendaService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, validacao("turno_id invalido")
	}
	produtoID, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, validacao("produto_id invalido")
	}
	if req.Quantidade < 1 {
		return nil, validacao("quantidade deve ser ao menos 1")
	}

	switch req.Tipo {
	case model.VendaTipoVenda:
		if req.Pagamento == "" {
			return nil, validacao("pagamento e obrigatorio para vendas")
		}
	case model.VendaTipoConsumo:
		// Consumption never moves money; a supplied payment method is a
		// client bug worth rejecting loudly.
		if req.Pagamento != "" {
			return nil, validacao("consumo nao admite forma de pagamento")
		}
	default:
		return nil, validacao("tipo invalido: %s", req.Tipo)
	}

	var consumidorID *uuid.UUID
	if req.ConsumidorID != nil {
		id, err := uuid.Parse(*req.ConsumidorID)
		if err != nil {
			return nil, validacao("consumidor_id invalido")
		}
		consumidorID = &id
	}

	produto, err := s.produtoRepo.FindByID(ctx, produtoID)
	if err != nil {
		return nil, naoEncontrado("produto nao encontrado")
	}
	if !produto.Ativo {
		return nil, precondicao("produto inativo no catalogo")
	}

	total := money.Round(produto.Preco.Mul(decimal.NewFromInt(int64(req.Quantidade))))

	venda := &model.Venda{
		TurnoID:       turnoID,
		Tipo:          req.Tipo,
		ProdutoID:     produto.ID,
		NomeProduto:   produto.Nome,
		PrecoUnitario: produto.Preco,
		Quantidade:    req.Quantidade,
		Total:         total,
		ConsumidorID:  consumidorID,
	}
	if req.Pagamento != "" {
		pagamento := req.Pagamento
		venda.Pagamento = &pagamento
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		turno, err := s.turnoRepo.FindByIDForUpdateTx(tx, turnoID)
		if err != nil {
			return traduzErroBanco(err)
		}
		if turno.Status != model.TurnoAberto {
			return precondicao("vendas so podem ser registradas em turno aberto")
		}

		if err := s.repo.CreateTx(tx, venda); err != nil {
			return traduzErroBanco(err)
		}
		if venda.Tipo == model.VendaTipoVenda && venda.Pagamento != nil && *venda.Pagamento == model.PagamentoDinheiro {
			return s.turnoRepo.IncrementVendasDinheiroTx(tx, turno.ID, venda.Total)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publicarEvento(ctx, worker.EventoVendaRegistrada, turnoID, usuarioID, venda.Total.String())
	return vendaResponse(venda), nil
}

// ── Estornar ──────────────────────────────────────────────────────────────────
// Delete-and-recreate is the correction model; the delete applies the same
// compensating counter move the create applied. On a closed shift only admins
// may delete, and the stored summary stays as-is until a recalculation re-reads
// the counter.

func (s *vendaService) Estornar(ctx context.Context, usuarioID, vendaID uuid.UUID, isAdmin bool) error {
	venda, err := s.repo.FindByID(ctx, vendaID)
	if err != nil {
		return traduzErroBanco(err)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		turno, err := s.turnoRepo.FindByIDForUpdateTx(tx, venda.TurnoID)
		if err != nil {
			return traduzErroBanco(err)
		}
		if turno.Status != model.TurnoAberto && !isAdmin {
			return precondicao("estorno em turno fechado exige um administrador")
		}

		if err := s.repo.DeleteTx(tx, venda.ID); err != nil {
			return traduzErroBanco(err)
		}
		if venda.Tipo == model.VendaTipoVenda && venda.Pagamento != nil && *venda.Pagamento == model.PagamentoDinheiro {
			return s.turnoRepo.IncrementVendasDinheiroTx(tx, turno.ID, venda.Total.Neg())
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.publicarEvento(ctx, worker.EventoVendaEstornada, venda.TurnoID, usuarioID, venda.Total.String())
	return nil
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *vendaService) Listar(ctx context.Context, filter repository.VendaFilter) (*dto.VendaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}

	vendas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, traduzErroBanco(err)
	}

	data := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		data = append(data, *vendaResponse(&vendas[i]))
	}
	return &dto.VendaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *vendaService) publicarEvento(ctx context.Context, tipo string, turnoID, usuarioID uuid.UUID, detalhe string) {
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

func vendaResponse(v *model.Venda) *dto.VendaResponse {
	resp := &dto.VendaResponse{
		ID:            v.ID.String(),
		TurnoID:       v.TurnoID.String(),
		Tipo:          v.Tipo,
		Pagamento:     v.Pagamento,
		ProdutoID:     v.ProdutoID.String(),
		NomeProduto:   v.NomeProduto,
		PrecoUnitario: v.PrecoUnitario,
		Quantidade:    v.Quantidade,
		Total:         v.Total,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	if v.ConsumidorID != nil {
		id := v.ConsumidorID.String()
		resp.ConsumidorID = &id
	}
	return resp
}
