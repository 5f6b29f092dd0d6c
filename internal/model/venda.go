package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venda is one sale or internal consumption event inside a shift.
// Tipo: "venda" | "consumo". Pagamento: "dinheiro" | "pix" | "cartao"
// (only meaningful for Tipo=venda).
//
// Records are never updated in place — corrections delete and recreate, which
// keeps the audit trail trivial. Deleting a cash sale retracts its total from
// the shift's running cash counter; deleting a consumo has no drawer effect.
type Venda struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID uuid.UUID `gorm:"type:uuid;index;not null"`
	Tipo    string    `gorm:"type:varchar(20);not null"`

	Pagamento *string `gorm:"type:varchar(20)"`

	ProdutoID uuid.UUID `gorm:"type:uuid;not null"`
	// NomeProduto and PrecoUnitario are snapshots taken at sale time; later
	// catalog edits must not rewrite history.
	NomeProduto   string          `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantidade    int             `gorm:"not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// ConsumidorID references the staff member charged (Tipo=consumo only).
	ConsumidorID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
}

const (
	VendaTipoVenda   = "venda"
	VendaTipoConsumo = "consumo"

	PagamentoDinheiro = "dinheiro"
	PagamentoPix      = "pix"
	PagamentoCartao   = "cartao"
)
