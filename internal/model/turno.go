package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Turno represents one operator's cash-drawer work period.
// Status: "aberto" | "fechado"
//
// VendasDinheiro and TotalSangrias are incrementally-maintained counters kept
// cheap for the live monitor; at close/correction time the reconciliation
// engine re-sums the sub-ledgers as the authoritative value and the counters
// are reconciled, not trusted.
type Turno struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(20);not null;default:'aberto'"`

	SaldoInicial   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VendasDinheiro decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalSangrias  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// ConfirmadoFinanceiro marks the envelope as transferred into the vault.
	ConfirmadoFinanceiro bool `gorm:"not null;default:false"`

	// ChaveFechamento is the client-supplied idempotency key of the close
	// attempt; a retried close with the same key replays the stored summary.
	ChaveFechamento *string `gorm:"type:varchar(64)"`

	// ── Fechamento (nil while aberto) ────────────────────────────────────────
	DinheiroContado      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EsperadoDinheiro     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Divergencia          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	JustificativaDiverg  *string
	Pix                  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	StoneAcumulado       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	StoneReal            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PagbankAcumulado     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PagbankReal          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalDigital         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalReceita         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	SangriasNoFechamento *decimal.Decimal `gorm:"type:decimal(12,2)"`
	QtdSangrias          *int
	// Corrigido distinguishes a corrected close from the original one for
	// audit purposes; externally both are just "fechado".
	Corrigido bool `gorm:"not null;default:false"`

	AbertoEm  time.Time
	FechadoEm *time.Time

	Sangrias []Sangria     `gorm:"foreignKey:TurnoID"`
	Vendas   []Venda       `gorm:"foreignKey:TurnoID"`
	Equipe   []MembroTurno `gorm:"foreignKey:TurnoID"`
}

const (
	TurnoAberto  = "aberto"
	TurnoFechado = "fechado"
)

// Sangria is one cash removal from the drawer during a shift. Entries are
// append-only; a wrong sangria is retracted (deleted with a compensating
// decrement), never edited.
type Sangria struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo        string          `gorm:"not null"`
	RegistradaPor uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

// MembroTurno links a collaborator sharing the shift (used by the payroll
// layer, which only needs presence, not amounts).
type MembroTurno struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID   uuid.UUID `gorm:"type:uuid;index;not null"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}
