package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventoAuditoria is the append-only audit trail: who closed or corrected a
// shift, when, with which divergence, and the justification given. Rows are
// only ever inserted — there is no update or delete path anywhere in the
// codebase.
// Tipo: "fechamento_turno" | "correcao_turno" | "confirmacao_envelope" |
// "divergencia_contador"
type EventoAuditoria struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo      string     `gorm:"type:varchar(40);index;not null"`
	TurnoID   *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID uuid.UUID  `gorm:"type:uuid;not null"`

	DivergenciaAnterior *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DivergenciaNova     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Justificativa       *string
	Detalhes            string

	CreatedAt time.Time
}

const (
	AuditoriaFechamento   = "fechamento_turno"
	AuditoriaCorrecao     = "correcao_turno"
	AuditoriaConfirmacao  = "confirmacao_envelope"
	AuditoriaDivergContad = "divergencia_contador"
)
