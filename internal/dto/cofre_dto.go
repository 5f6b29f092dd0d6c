package dto

import "github.com/shopspring/decimal"

type DespesaRequest struct {
	Descricao string          `json:"descricao" validate:"required,min=3"`
	Valor     decimal.Decimal `json:"valor"     validate:"required,gt=0"`
	Data      string          `json:"data"      validate:"omitempty,datetime=2006-01-02"`
}

type MovimentoResponse struct {
	ID        string          `json:"id"`
	Direcao   string          `json:"direcao"`
	Categoria string          `json:"categoria"`
	Descricao string          `json:"descricao"`
	Valor     decimal.Decimal `json:"valor"`
	Data      string          `json:"data"`
	TurnoID   *string         `json:"turno_id"`
	CreatedAt string          `json:"created_at"`
}

type MovimentoListResponse struct {
	Data  []MovimentoResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type SaldoResponse struct {
	Saldo decimal.Decimal `json:"saldo"`
}
