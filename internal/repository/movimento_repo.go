package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
)

type MovimentoRepository interface {
	DB() *gorm.DB

	CreateTx(tx *gorm.DB, m *model.MovimentoFinanceiro) error
	List(ctx context.Context, page, limit int) ([]model.MovimentoFinanceiro, int64, error)
	FindByTurno(ctx context.Context, turnoID uuid.UUID) (*model.MovimentoFinanceiro, error)
	Saldo(ctx context.Context) (decimal.Decimal, error)
}

type movimentoRepo struct{ db *gorm.DB }

func NewMovimentoRepository(db *gorm.DB) MovimentoRepository { return &movimentoRepo{db: db} }

func (r *movimentoRepo) DB() *gorm.DB { return r.db }

func (r *movimentoRepo) CreateTx(tx *gorm.DB, m *model.MovimentoFinanceiro) error {
	return tx.Create(m).Error
}

func (r *movimentoRepo) List(ctx context.Context, page, limit int) ([]model.MovimentoFinanceiro, int64, error) {
	var movs []model.MovimentoFinanceiro
	var total int64
	q := r.db.WithContext(ctx).Model(&model.MovimentoFinanceiro{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("data DESC, created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&movs).Error
	return movs, total, err
}

func (r *movimentoRepo) FindByTurno(ctx context.Context, turnoID uuid.UUID) (*model.MovimentoFinanceiro, error) {
	var m model.MovimentoFinanceiro
	err := r.db.WithContext(ctx).
		Where("turno_id = ? AND categoria = ?", turnoID, model.CategoriaEnvelope).
		First(&m).Error
	return &m, err
}

// Saldo folds the whole ledger: entradas − saidas.
func (r *movimentoRepo) Saldo(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Saldo decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(
		"SELECT COALESCE(SUM(CASE WHEN direcao = 'entrada' THEN valor ELSE -valor END), 0) AS saldo FROM movimento_financeiros",
	).Scan(&row).Error
	return row.Saldo, err
}
