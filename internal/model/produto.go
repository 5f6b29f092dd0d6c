package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is the read-only catalog entry consumed when recording a sale.
// The POS only needs name and price; full catalog management lives elsewhere.
type Produto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string          `gorm:"index;not null"`
	Categoria string          `gorm:"not null"`
	Preco     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Ativo     bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
