package dto

import "github.com/shopspring/decimal"

type ProdutoResponse struct {
	ID        string          `json:"id"`
	Nome      string          `json:"nome"`
	Categoria string          `json:"categoria"`
	Preco     decimal.Decimal `json:"preco"`
}
