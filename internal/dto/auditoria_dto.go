package dto

import "github.com/shopspring/decimal"

type EventoAuditoriaResponse struct {
	ID                  string           `json:"id"`
	Tipo                string           `json:"tipo"`
	TurnoID             *string          `json:"turno_id"`
	UsuarioID           string           `json:"usuario_id"`
	DivergenciaAnterior *decimal.Decimal `json:"divergencia_anterior"`
	DivergenciaNova     *decimal.Decimal `json:"divergencia_nova"`
	Justificativa       *string          `json:"justificativa"`
	Detalhes            string           `json:"detalhes"`
	CreatedAt           string           `json:"created_at"`
}

type AuditoriaListResponse struct {
	Data  []EventoAuditoriaResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
