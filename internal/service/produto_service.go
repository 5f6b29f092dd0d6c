package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
)

// ProdutoService is read-only: the register consults the catalog, it never
// edits it.
type ProdutoService interface {
	Listar(ctx context.Context) ([]dto.ProdutoResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
}

type produtoService struct {
	repo repository.ProdutoRepository
}

func NewProdutoService(repo repository.ProdutoRepository) ProdutoService {
	return &produtoService{repo: repo}
}

func (s *produtoService) Listar(ctx context.Context) ([]dto.ProdutoResponse, error) {
	produtos, err := s.repo.List(ctx)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	out := make([]dto.ProdutoResponse, len(produtos))
	for i := range produtos {
		out[i] = *produtoResponse(&produtos[i])
	}
	return out, nil
}

func (s *produtoService) Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	produto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traduzErroBanco(err)
	}
	return produtoResponse(produto), nil
}

func produtoResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:        p.ID.String(),
		Nome:      p.Nome,
		Categoria: p.Categoria,
		Preco:     p.Preco,
	}
}
