package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/service"
)

type cofreFixture struct {
	svc     service.CofreService
	movs    *fakeMovimentoRepo
	turnos  *fakeTurnoRepo
	aud     *fakeAuditoriaRepo
	turnoID uuid.UUID
	adminID uuid.UUID
}

func newCofreFixture(t *testing.T) *cofreFixture {
	t.Helper()

	movs := &fakeMovimentoRepo{}
	turnos := newFakeTurnoRepo()
	aud := &fakeAuditoriaRepo{}

	fechadoEm := time.Now().UTC().Add(-time.Hour)
	turno := &model.Turno{
		ID:              uuid.New(),
		UsuarioID:       uuid.New(),
		Status:          model.TurnoFechado,
		FechadoEm:       &fechadoEm,
		DinheiroContado: decPtr(dec("320.00")),
	}
	turnos.turnos[turno.ID] = turno

	return &cofreFixture{
		svc:     service.NewCofreService(movs, turnos, aud, nil),
		movs:    movs,
		turnos:  turnos,
		aud:     aud,
		turnoID: turno.ID,
		adminID: uuid.New(),
	}
}

func TestConfirmarEnvelope(t *testing.T) {
	f := newCofreFixture(t)

	resp, err := f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	require.NoError(t, err)

	// O cofre recebe o que esta fisicamente no envelope: o contado, nao o
	// esperado.
	assert.Equal(t, model.MovimentoEntrada, resp.Direcao)
	assert.Equal(t, model.CategoriaEnvelope, resp.Categoria)
	assert.Equal(t, "320", resp.Valor.String())
	require.NotNil(t, resp.TurnoID)
	assert.Equal(t, f.turnoID.String(), *resp.TurnoID)

	assert.True(t, f.turnos.turnos[f.turnoID].ConfirmadoFinanceiro)

	require.Len(t, f.aud.eventos, 1)
	assert.Equal(t, model.AuditoriaConfirmacao, f.aud.eventos[0].Tipo)
	assert.Equal(t, f.adminID, f.aud.eventos[0].UsuarioID)
}

func TestConfirmarEnvelopeApenasUmaVez(t *testing.T) {
	f := newCofreFixture(t)

	_, err := f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	assert.ErrorIs(t, err, service.ErrPrecondicao)
	assert.Len(t, f.movs.movimentos, 1)
}

func TestConfirmarEnvelopeExigeTurnoFechado(t *testing.T) {
	f := newCofreFixture(t)
	f.turnos.turnos[f.turnoID].Status = model.TurnoAberto

	_, err := f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	assert.ErrorIs(t, err, service.ErrPrecondicao)
	assert.Empty(t, f.movs.movimentos)
}

func TestConfirmarEnvelopeSemContado(t *testing.T) {
	f := newCofreFixture(t)
	f.turnos.turnos[f.turnoID].DinheiroContado = nil

	_, err := f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	assert.ErrorIs(t, err, service.ErrPrecondicao)
}

func TestEnvelopeDoTurno(t *testing.T) {
	f := newCofreFixture(t)

	_, err := f.svc.EnvelopeDoTurno(context.Background(), f.turnoID)
	assert.ErrorIs(t, err, service.ErrNaoEncontrado)

	_, err = f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	require.NoError(t, err)

	env, err := f.svc.EnvelopeDoTurno(context.Background(), f.turnoID)
	require.NoError(t, err)
	assert.Equal(t, "320", env.Valor.String())
}

func TestRegistrarDespesaESaldo(t *testing.T) {
	f := newCofreFixture(t)

	_, err := f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	require.NoError(t, err)

	desp, err := f.svc.RegistrarDespesa(context.Background(), f.adminID, dto.DespesaRequest{
		Descricao: "conta de luz",
		Valor:     dec("120.00"),
		Data:      "2026-08-29",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovimentoSaida, desp.Direcao)
	assert.Equal(t, model.CategoriaDespesa, desp.Categoria)
	assert.Equal(t, "2026-08-29", desp.Data)

	// saldo = 320 (envelope) - 120 (despesa)
	saldo, err := f.svc.Saldo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "200", saldo.Saldo.String())
}

func TestRegistrarDespesaValorInvalido(t *testing.T) {
	f := newCofreFixture(t)

	_, err := f.svc.RegistrarDespesa(context.Background(), f.adminID, dto.DespesaRequest{
		Descricao: "nada",
		Valor:     dec("-5.00"),
	})
	assert.ErrorIs(t, err, service.ErrValidacao)

	_, err = f.svc.RegistrarDespesa(context.Background(), f.adminID, dto.DespesaRequest{
		Descricao: "data quebrada",
		Valor:     dec("10.00"),
		Data:      "29/08/2026",
	})
	assert.ErrorIs(t, err, service.ErrValidacao)
}

func TestListarMovimentos(t *testing.T) {
	f := newCofreFixture(t)

	_, err := f.svc.ConfirmarEnvelope(context.Background(), f.adminID, f.turnoID)
	require.NoError(t, err)
	_, err = f.svc.RegistrarDespesa(context.Background(), f.adminID, dto.DespesaRequest{
		Descricao: "gas da cozinha",
		Valor:     dec("80.00"),
	})
	require.NoError(t, err)

	lista, err := f.svc.ListarMovimentos(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), lista.Total)
	assert.Len(t, lista.Data, 2)
	assert.Equal(t, 1, lista.Page)
	assert.Equal(t, 50, lista.Limit)
}
