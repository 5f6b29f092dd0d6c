package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
)

// AuditoriaRepository is insert-only. There is intentionally no update or
// delete method — the trail is immutable.
type AuditoriaRepository interface {
	CreateTx(tx *gorm.DB, e *model.EventoAuditoria) error
	Create(ctx context.Context, e *model.EventoAuditoria) error
	ListByTurno(ctx context.Context, turnoID uuid.UUID) ([]model.EventoAuditoria, error)
	List(ctx context.Context, page, limit int) ([]model.EventoAuditoria, int64, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) CreateTx(tx *gorm.DB, e *model.EventoAuditoria) error {
	return tx.Create(e).Error
}

func (r *auditoriaRepo) Create(ctx context.Context, e *model.EventoAuditoria) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditoriaRepo) ListByTurno(ctx context.Context, turnoID uuid.UUID) ([]model.EventoAuditoria, error) {
	var eventos []model.EventoAuditoria
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("created_at ASC").
		Find(&eventos).Error
	return eventos, err
}

func (r *auditoriaRepo) List(ctx context.Context, page, limit int) ([]model.EventoAuditoria, int64, error) {
	var eventos []model.EventoAuditoria
	var total int64
	q := r.db.WithContext(ctx).Model(&model.EventoAuditoria{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&eventos).Error
	return eventos, total, err
}
