package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
)

// SomaSangrias is the authoritative re-sum of a shift's withdrawal sub-ledger.
type SomaSangrias struct {
	Total decimal.Decimal
	Qtd   int
}

type TurnoRepository interface {
	DB() *gorm.DB // exposes the DB for transaction creation in service layer

	Create(ctx context.Context, t *model.Turno) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error)
	FindAbertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Turno, error)
	ListAbertos(ctx context.Context) ([]model.Turno, error)
	ListFechados(ctx context.Context, page, limit int) ([]model.Turno, int64, error)

	// Tx methods run inside the caller's transaction; the close/correction
	// paths lock the shift row so they serialize against concurrent sangria
	// and venda mutations on the same shift.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Turno, error)
	UpdateTx(tx *gorm.DB, t *model.Turno) error
	IncrementVendasDinheiroTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
	IncrementTotalSangriasTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
	SumSangriasTx(tx *gorm.DB, id uuid.UUID) (*SomaSangrias, error)
	FindUltimoFechadoNoDiaTx(tx *gorm.DB, ref time.Time) (*model.Turno, error)

	CreateSangriaTx(tx *gorm.DB, s *model.Sangria) error
	DeleteSangriaTx(tx *gorm.DB, id uuid.UUID) error
	FindSangriaTx(tx *gorm.DB, turnoID, sangriaID uuid.UUID) (*model.Sangria, error)
	ListSangrias(ctx context.Context, turnoID uuid.UUID) ([]model.Sangria, error)
	SumSangrias(ctx context.Context, id uuid.UUID) (*SomaSangrias, error)
}

type turnoRepo struct{ db *gorm.DB }

func NewTurnoRepository(db *gorm.DB) TurnoRepository { return &turnoRepo{db: db} }

func (r *turnoRepo) DB() *gorm.DB { return r.db }

func (r *turnoRepo) Create(ctx context.Context, t *model.Turno) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *turnoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Preload("Sangrias", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Equipe").
		First(&t, id).Error
	return &t, err
}

func (r *turnoRepo) FindAbertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND status = ?", usuarioID, model.TurnoAberto).
		First(&t).Error
	return &t, err
}

func (r *turnoRepo) ListAbertos(ctx context.Context) ([]model.Turno, error) {
	var turnos []model.Turno
	err := r.db.WithContext(ctx).
		Where("status = ?", model.TurnoAberto).
		Order("aberto_em ASC").
		Find(&turnos).Error
	return turnos, err
}

func (r *turnoRepo) ListFechados(ctx context.Context, page, limit int) ([]model.Turno, int64, error) {
	var turnos []model.Turno
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Turno{}).Where("status = ?", model.TurnoFechado)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fechado_em DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&turnos).Error
	return turnos, total, err
}

func (r *turnoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	return &t, err
}

func (r *turnoRepo) UpdateTx(tx *gorm.DB, t *model.Turno) error {
	return tx.Save(t).Error
}

func (r *turnoRepo) IncrementVendasDinheiroTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Turno{}).Where("id = ?", id).
		UpdateColumn("vendas_dinheiro", gorm.Expr("vendas_dinheiro + ?", delta)).Error
}

func (r *turnoRepo) IncrementTotalSangriasTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Turno{}).Where("id = ?", id).
		UpdateColumn("total_sangrias", gorm.Expr("total_sangrias + ?", delta)).Error
}

func (r *turnoRepo) SumSangriasTx(tx *gorm.DB, id uuid.UUID) (*SomaSangrias, error) {
	return sumSangrias(tx, id)
}

func (r *turnoRepo) SumSangrias(ctx context.Context, id uuid.UUID) (*SomaSangrias, error) {
	return sumSangrias(r.db.WithContext(ctx), id)
}

func sumSangrias(db *gorm.DB, id uuid.UUID) (*SomaSangrias, error) {
	var row struct {
		Total decimal.Decimal
		Qtd   int
	}
	err := db.Raw(
		"SELECT COALESCE(SUM(valor), 0) AS total, COUNT(*) AS qtd FROM sangrias WHERE turno_id = ?", id,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &SomaSangrias{Total: row.Total, Qtd: row.Qtd}, nil
}

// FindUltimoFechadoNoDiaTx returns the most-recently-ended shift strictly
// before ref, within the same calendar day — the baseline source for card
// settlement at close time.
func (r *turnoRepo) FindUltimoFechadoNoDiaTx(tx *gorm.DB, ref time.Time) (*model.Turno, error) {
	var t model.Turno
	err := tx.
		Where("status = ? AND fechado_em IS NOT NULL", model.TurnoFechado).
		Where("DATE(fechado_em) = DATE(?) AND fechado_em < ?", ref, ref).
		Order("fechado_em DESC").
		First(&t).Error
	return &t, err
}

func (r *turnoRepo) CreateSangriaTx(tx *gorm.DB, s *model.Sangria) error {
	return tx.Create(s).Error
}

func (r *turnoRepo) DeleteSangriaTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Sangria{}, id).Error
}

func (r *turnoRepo) FindSangriaTx(tx *gorm.DB, turnoID, sangriaID uuid.UUID) (*model.Sangria, error) {
	var s model.Sangria
	err := tx.
		Where("id = ? AND turno_id = ?", sangriaID, turnoID).
		First(&s).Error
	return &s, err
}

func (r *turnoRepo) ListSangrias(ctx context.Context, turnoID uuid.UUID) ([]model.Sangria, error) {
	var sangrias []model.Sangria
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("created_at DESC").
		Find(&sangrias).Error
	return sangrias, err
}
