package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
)

// AuditoriaService reads the immutable trail; writes happen inside the close,
// correction and envelope transactions.
type AuditoriaService interface {
	ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.EventoAuditoriaResponse, error)
	Listar(ctx context.Context, page, limit int) (*dto.AuditoriaListResponse, error)
}

type auditoriaService struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaService(repo repository.AuditoriaRepository) AuditoriaService {
	return &auditoriaService{repo: repo}
}

func (s *auditoriaService) ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.EventoAuditoriaResponse, error) {
	eventos, err := s.repo.ListByTurno(ctx, turnoID)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	out := make([]dto.EventoAuditoriaResponse, len(eventos))
	for i := range eventos {
		out[i] = *eventoResponse(&eventos[i])
	}
	return out, nil
}

func (s *auditoriaService) Listar(ctx context.Context, page, limit int) (*dto.AuditoriaListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	eventos, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	data := make([]dto.EventoAuditoriaResponse, len(eventos))
	for i := range eventos {
		data[i] = *eventoResponse(&eventos[i])
	}
	return &dto.AuditoriaListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func eventoResponse(e *model.EventoAuditoria) *dto.EventoAuditoriaResponse {
	resp := &dto.EventoAuditoriaResponse{
		ID:                  e.ID.String(),
		Tipo:                e.Tipo,
		UsuarioID:           e.UsuarioID.String(),
		DivergenciaAnterior: e.DivergenciaAnterior,
		DivergenciaNova:     e.DivergenciaNova,
		Justificativa:       e.Justificativa,
		Detalhes:            e.Detalhes,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
	}
	if e.TurnoID != nil {
		id := e.TurnoID.String()
		resp.TurnoID = &id
	}
	return resp
}
