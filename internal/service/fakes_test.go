package service_test

// In-memory repository fakes. DB() returns nil so the services run their
// transactional closures directly, without a real store.

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
)

// ── TurnoRepository ───────────────────────────────────────────────────────────

type fakeTurnoRepo struct {
	turnos   map[uuid.UUID]*model.Turno
	sangrias map[uuid.UUID]*model.Sangria
}

func newFakeTurnoRepo() *fakeTurnoRepo {
	return &fakeTurnoRepo{
		turnos:   make(map[uuid.UUID]*model.Turno),
		sangrias: make(map[uuid.UUID]*model.Sangria),
	}
}

func (r *fakeTurnoRepo) DB() *gorm.DB { return nil }

func (r *fakeTurnoRepo) Create(_ context.Context, t *model.Turno) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.turnos[t.ID] = t
	return nil
}

func (r *fakeTurnoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Turno, error) {
	t, ok := r.turnos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTurnoRepo) FindAbertoPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.Turno, error) {
	for _, t := range r.turnos {
		if t.UsuarioID == usuarioID && t.Status == model.TurnoAberto {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTurnoRepo) ListAbertos(_ context.Context) ([]model.Turno, error) {
	var out []model.Turno
	for _, t := range r.turnos {
		if t.Status == model.TurnoAberto {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTurnoRepo) ListFechados(_ context.Context, page, limit int) ([]model.Turno, int64, error) {
	var out []model.Turno
	for _, t := range r.turnos {
		if t.Status == model.TurnoFechado {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTurnoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Turno, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeTurnoRepo) UpdateTx(_ *gorm.DB, t *model.Turno) error {
	r.turnos[t.ID] = t
	return nil
}

func (r *fakeTurnoRepo) IncrementVendasDinheiroTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	t, ok := r.turnos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.VendasDinheiro = t.VendasDinheiro.Add(delta)
	return nil
}

func (r *fakeTurnoRepo) IncrementTotalSangriasTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	t, ok := r.turnos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.TotalSangrias = t.TotalSangrias.Add(delta)
	return nil
}

func (r *fakeTurnoRepo) SumSangriasTx(_ *gorm.DB, id uuid.UUID) (*repository.SomaSangrias, error) {
	return r.SumSangrias(context.Background(), id)
}

func (r *fakeTurnoRepo) SumSangrias(_ context.Context, id uuid.UUID) (*repository.SomaSangrias, error) {
	soma := &repository.SomaSangrias{Total: decimal.Zero}
	for _, s := range r.sangrias {
		if s.TurnoID == id {
			soma.Total = soma.Total.Add(s.Valor)
			soma.Qtd++
		}
	}
	return soma, nil
}

func (r *fakeTurnoRepo) FindUltimoFechadoNoDiaTx(_ *gorm.DB, ref time.Time) (*model.Turno, error) {
	var candidatos []*model.Turno
	for _, t := range r.turnos {
		if t.Status == model.TurnoFechado && t.FechadoEm != nil &&
			sameDay(*t.FechadoEm, ref) && t.FechadoEm.Before(ref) {
			candidatos = append(candidatos, t)
		}
	}
	if len(candidatos) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(candidatos, func(i, j int) bool {
		return candidatos[i].FechadoEm.After(*candidatos[j].FechadoEm)
	})
	return candidatos[0], nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (r *fakeTurnoRepo) CreateSangriaTx(_ *gorm.DB, s *model.Sangria) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.sangrias[s.ID] = s
	return nil
}

func (r *fakeTurnoRepo) DeleteSangriaTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.sangrias, id)
	return nil
}

func (r *fakeTurnoRepo) FindSangriaTx(_ *gorm.DB, turnoID, sangriaID uuid.UUID) (*model.Sangria, error) {
	s, ok := r.sangrias[sangriaID]
	if !ok || s.TurnoID != turnoID {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeTurnoRepo) ListSangrias(_ context.Context, turnoID uuid.UUID) ([]model.Sangria, error) {
	var out []model.Sangria
	for _, s := range r.sangrias {
		if s.TurnoID == turnoID {
			out = append(out, *s)
		}
	}
	return out, nil
}

var _ repository.TurnoRepository = (*fakeTurnoRepo)(nil)

// ── AuditoriaRepository ───────────────────────────────────────────────────────

type fakeAuditoriaRepo struct {
	eventos []model.EventoAuditoria
}

func (r *fakeAuditoriaRepo) CreateTx(_ *gorm.DB, e *model.EventoAuditoria) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.eventos = append(r.eventos, *e)
	return nil
}

func (r *fakeAuditoriaRepo) Create(_ context.Context, e *model.EventoAuditoria) error {
	return r.CreateTx(nil, e)
}

func (r *fakeAuditoriaRepo) ListByTurno(_ context.Context, turnoID uuid.UUID) ([]model.EventoAuditoria, error) {
	var out []model.EventoAuditoria
	for _, e := range r.eventos {
		if e.TurnoID != nil && *e.TurnoID == turnoID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditoriaRepo) List(_ context.Context, page, limit int) ([]model.EventoAuditoria, int64, error) {
	return r.eventos, int64(len(r.eventos)), nil
}

var _ repository.AuditoriaRepository = (*fakeAuditoriaRepo)(nil)

// ── UsuarioRepository ─────────────────────────────────────────────────────────

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Ativo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Ativo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Ativo = false
	}
	return nil
}

func (r *fakeUsuarioRepo) Reativar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Ativo = true
	}
	return nil
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

// ── VendaRepository ───────────────────────────────────────────────────────────

type fakeVendaRepo struct {
	vendas map[uuid.UUID]*model.Venda
}

func newFakeVendaRepo() *fakeVendaRepo {
	return &fakeVendaRepo{vendas: make(map[uuid.UUID]*model.Venda)}
}

func (r *fakeVendaRepo) DB() *gorm.DB { return nil }

func (r *fakeVendaRepo) CreateTx(_ *gorm.DB, v *model.Venda) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.vendas[v.ID] = v
	return nil
}

func (r *fakeVendaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.vendas, id)
	return nil
}

func (r *fakeVendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venda, error) {
	v, ok := r.vendas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *fakeVendaRepo) List(_ context.Context, filter repository.VendaFilter) ([]model.Venda, int64, error) {
	var out []model.Venda
	for _, v := range r.vendas {
		if filter.TurnoID != "" && v.TurnoID.String() != filter.TurnoID {
			continue
		}
		if filter.Tipo != "" && v.Tipo != filter.Tipo {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

var _ repository.VendaRepository = (*fakeVendaRepo)(nil)

// ── ProdutoRepository ─────────────────────────────────────────────────────────

type fakeProdutoRepo struct {
	produtos map[uuid.UUID]*model.Produto
}

func newFakeProdutoRepo() *fakeProdutoRepo {
	return &fakeProdutoRepo{produtos: make(map[uuid.UUID]*model.Produto)}
}

func (r *fakeProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeProdutoRepo) List(_ context.Context) ([]model.Produto, error) {
	var out []model.Produto
	for _, p := range r.produtos {
		if p.Ativo {
			out = append(out, *p)
		}
	}
	return out, nil
}

var _ repository.ProdutoRepository = (*fakeProdutoRepo)(nil)

// ── MovimentoRepository ───────────────────────────────────────────────────────

type fakeMovimentoRepo struct {
	movimentos []model.MovimentoFinanceiro
}

func (r *fakeMovimentoRepo) DB() *gorm.DB { return nil }

func (r *fakeMovimentoRepo) CreateTx(_ *gorm.DB, m *model.MovimentoFinanceiro) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimentos = append(r.movimentos, *m)
	return nil
}

func (r *fakeMovimentoRepo) List(_ context.Context, page, limit int) ([]model.MovimentoFinanceiro, int64, error) {
	return r.movimentos, int64(len(r.movimentos)), nil
}

func (r *fakeMovimentoRepo) FindByTurno(_ context.Context, turnoID uuid.UUID) (*model.MovimentoFinanceiro, error) {
	for i := range r.movimentos {
		m := &r.movimentos[i]
		if m.TurnoID != nil && *m.TurnoID == turnoID && m.Categoria == model.CategoriaEnvelope {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMovimentoRepo) Saldo(_ context.Context) (decimal.Decimal, error) {
	saldo := decimal.Zero
	for _, m := range r.movimentos {
		if m.Direcao == model.MovimentoEntrada {
			saldo = saldo.Add(m.Valor)
		} else {
			saldo = saldo.Sub(m.Valor)
		}
	}
	return saldo, nil
}

var _ repository.MovimentoRepository = (*fakeMovimentoRepo)(nil)
