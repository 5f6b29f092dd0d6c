package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirTurnoRequest struct {
	SaldoInicial decimal.Decimal `json:"saldo_inicial" validate:"min=0"`
	// Equipe lists collaborators sharing the shift (usuario IDs).
	Equipe []string `json:"equipe" validate:"omitempty,dive,uuid"`
}

type FecharTurnoRequest struct {
	TurnoID          string          `json:"turno_id"          validate:"required,uuid"`
	DinheiroContado  decimal.Decimal `json:"dinheiro_contado"  validate:"min=0"`
	Pix              decimal.Decimal `json:"pix"               validate:"min=0"`
	StoneAcumulado   decimal.Decimal `json:"stone_acumulado"   validate:"min=0"`
	PagbankAcumulado decimal.Decimal `json:"pagbank_acumulado" validate:"min=0"`
	Justificativa    *string         `json:"justificativa"`
	// ChaveIdempotencia lets a client safely retry a close that timed out:
	// a repeat with the same key replays the stored summary.
	ChaveIdempotencia string `json:"chave_idempotencia" validate:"omitempty,max=64"`
}

type RecalcularTurnoRequest struct {
	DinheiroContado  decimal.Decimal `json:"dinheiro_contado"  validate:"min=0"`
	Pix              decimal.Decimal `json:"pix"               validate:"min=0"`
	StoneAcumulado   decimal.Decimal `json:"stone_acumulado"   validate:"min=0"`
	PagbankAcumulado decimal.Decimal `json:"pagbank_acumulado" validate:"min=0"`
	Justificativa    *string         `json:"justificativa"`
	// TotalSangrias overrides the ledger re-sum when the admin is fixing the
	// withdrawal list itself; nil = re-sum from the sub-ledger.
	TotalSangrias *decimal.Decimal `json:"total_sangrias" validate:"omitempty,min=0"`
}

type SangriaRequest struct {
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	Motivo string          `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ValoresReais struct {
	Stone   decimal.Decimal `json:"stone"`
	Pagbank decimal.Decimal `json:"pagbank"`
}

type FechamentoResponse struct {
	TurnoID          string          `json:"turno_id"`
	DinheiroContado  decimal.Decimal `json:"dinheiro_contado"`
	EsperadoDinheiro decimal.Decimal `json:"esperado_dinheiro"`
	Divergencia      decimal.Decimal `json:"divergencia"`
	Justificativa    *string         `json:"justificativa"`
	Pix              decimal.Decimal `json:"pix"`
	StoneAcumulado   decimal.Decimal `json:"stone_acumulado"`
	PagbankAcumulado decimal.Decimal `json:"pagbank_acumulado"`
	ValoresReais     ValoresReais    `json:"valores_reais"`
	TotalSangrias    decimal.Decimal `json:"total_sangrias"`
	QtdSangrias      int             `json:"qtd_sangrias"`
	TotalDigital     decimal.Decimal `json:"total_digital"`
	TotalReceita     decimal.Decimal `json:"total_receita"`
	Corrigido        bool            `json:"corrigido"`
	FechadoEm        string          `json:"fechado_em"`
}

type SangriaResponse struct {
	ID            string          `json:"id"`
	Valor         decimal.Decimal `json:"valor"`
	Motivo        string          `json:"motivo"`
	RegistradaPor string          `json:"registrada_por"`
	CreatedAt     string          `json:"created_at"`
}

type TurnoResponse struct {
	ID                   string              `json:"id"`
	UsuarioID            string              `json:"usuario_id"`
	Status               string              `json:"status"`
	SaldoInicial         decimal.Decimal     `json:"saldo_inicial"`
	VendasDinheiro       decimal.Decimal     `json:"vendas_dinheiro"`
	TotalSangrias        decimal.Decimal     `json:"total_sangrias"`
	ConfirmadoFinanceiro bool                `json:"confirmado_financeiro"`
	AbertoEm             string              `json:"aberto_em"`
	FechadoEm            *string             `json:"fechado_em"`
	Fechamento           *FechamentoResponse `json:"fechamento"`
	Sangrias             []SangriaResponse   `json:"sangrias,omitempty"`
	Equipe               []string            `json:"equipe,omitempty"`
}
