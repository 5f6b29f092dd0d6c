package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovimentoFinanceiro is an entry in the vault ledger (cofre), distinct from
// per-shift drawers. Direcao: "entrada" | "saida".
// Movements are NEVER modified or deleted — the balance is a fold over all of
// them. Entradas come from confirmed shift envelopes; saidas from manual
// expenses.
type MovimentoFinanceiro struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Direcao   string          `gorm:"type:varchar(10);not null"`
	Categoria string          `gorm:"type:varchar(40);not null"`
	Descricao string          `gorm:"not null"`
	Valor     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Data      time.Time       `gorm:"index;not null"`
	// TurnoID links an envelope entry to the shift it came from.
	TurnoID       *uuid.UUID `gorm:"type:uuid;index"`
	RegistradoPor uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

const (
	MovimentoEntrada = "entrada"
	MovimentoSaida   = "saida"

	CategoriaEnvelope = "envelope"
	CategoriaDespesa  = "despesa"
)
