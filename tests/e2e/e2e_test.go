//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Scenarios:
//   - Full shift cycle (login → abrir → venda → sangria → fechar → envelope → saldo)
//   - Divergence above tolerance requires a justification
//   - Idempotent close replay via chave_idempotencia
//   - Admin correction recomputes the stored summary

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/config"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/infra"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/router"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/worker"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// fechamento is the close summary as it travels over the wire; decimals are
// JSON strings.
type fechamento struct {
	TurnoID          string  `json:"turno_id"`
	DinheiroContado  string  `json:"dinheiro_contado"`
	EsperadoDinheiro string  `json:"esperado_dinheiro"`
	Divergencia      string  `json:"divergencia"`
	Justificativa    *string `json:"justificativa"`
	TotalSangrias    string  `json:"total_sangrias"`
	TotalDigital     string  `json:"total_digital"`
	TotalReceita     string  `json:"total_receita"`
	Corrigido        bool    `json:"corrigido"`
	FechadoEm        string  `json:"fechado_em"`
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pastelaria_test"),
		tcPostgres.WithUsername("pastelaria"),
		tcPostgres.WithPassword("pastelaria"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// Seed admin user + one catalog product.
	hash, err := bcrypt.GenerateFromPassword([]byte("pastelaria2026"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
		INSERT INTO usuarios (id, username, nome, password_hash, papel, ativo, created_at, updated_at)
		VALUES (gen_random_uuid(), 'admin', 'Admin E2E', ?, 'admin', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)
	require.NoError(t, db.Exec(`
		INSERT INTO produtos (id, nome, categoria, preco, ativo, created_at, updated_at)
		VALUES (gen_random_uuid(), 'Pastel de queijo', 'pasteis', 7.50, true, NOW(), NOW())`).Error)

	r := router.New(cfg, db, rdb, worker.NewDispatcher(rdb))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "pastelaria2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server: srv,
		token:  loginBody.AccessToken,
		engine: r,
	}
}

func (env *testEnv) produtoID(t *testing.T) string {
	t.Helper()
	resp := do(t, env.server, "GET", "/v1/produtos", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Data)
	return body.Data[0].ID
}

func (env *testEnv) abrirTurno(t *testing.T, saldo string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/turnos/abrir",
		jsonBody(t, map[string]any{"saldo_inicial": saldo}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var turno struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &turno)
	require.NotEmpty(t, turno.ID)
	return turno.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeTurno(t *testing.T) {
	env := setupTestEnv(t)
	produtoID := env.produtoID(t)
	turnoID := env.abrirTurno(t, "100.00")

	// Venda em dinheiro: 2 x 7.50 = 15.
	vendaResp := do(t, env.server, "POST", "/v1/vendas",
		jsonBody(t, map[string]any{
			"turno_id":   turnoID,
			"tipo":       "venda",
			"pagamento":  "dinheiro",
			"produto_id": produtoID,
			"quantidade": 2,
		}), env.token)
	require.Equal(t, http.StatusCreated, vendaResp.StatusCode)
	var venda struct {
		Total string `json:"total"`
	}
	decodeJSON(t, vendaResp, &venda)
	assert.Equal(t, "15", venda.Total)

	// Sangria de 20.
	sangriaResp := do(t, env.server, "POST", "/v1/turnos/"+turnoID+"/sangrias",
		jsonBody(t, map[string]any{"valor": "20.00", "motivo": "troco para o caixa 2"}), env.token)
	require.Equal(t, http.StatusCreated, sangriaResp.StatusCode)

	// esperado = 100 + 15 - 20 = 95.
	fecharResp := do(t, env.server, "POST", "/v1/turnos/fechar",
		jsonBody(t, map[string]any{
			"turno_id":         turnoID,
			"dinheiro_contado": "95.00",
			"pix":              "10.00",
			"stone_acumulado":  "50.00",
		}), env.token)
	require.Equal(t, http.StatusOK, fecharResp.StatusCode)
	var resumo fechamento
	decodeJSON(t, fecharResp, &resumo)
	assert.Equal(t, "95", resumo.EsperadoDinheiro)
	assert.Equal(t, "0", resumo.Divergencia)
	assert.Equal(t, "20", resumo.TotalSangrias)
	// digital = 10 (pix) + 50 (stone, primeiro fechamento do dia)
	assert.Equal(t, "60", resumo.TotalDigital)
	assert.Equal(t, "75", resumo.TotalReceita)

	// Envelope entra no cofre com o valor contado.
	envResp := do(t, env.server, "POST", "/v1/cofre/envelopes/"+turnoID, jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusCreated, envResp.StatusCode)
	var mov struct {
		Direcao string `json:"direcao"`
		Valor   string `json:"valor"`
	}
	decodeJSON(t, envResp, &mov)
	assert.Equal(t, "entrada", mov.Direcao)
	assert.Equal(t, "95", mov.Valor)

	// Segunda confirmacao e recusada.
	envResp2 := do(t, env.server, "POST", "/v1/cofre/envelopes/"+turnoID, jsonBody(t, map[string]any{}), env.token)
	assert.Equal(t, http.StatusConflict, envResp2.StatusCode)

	saldoResp := do(t, env.server, "GET", "/v1/cofre/saldo", nil, env.token)
	require.Equal(t, http.StatusOK, saldoResp.StatusCode)
	var saldo struct {
		Saldo string `json:"saldo"`
	}
	decodeJSON(t, saldoResp, &saldo)
	assert.Equal(t, "95", saldo.Saldo)
}

func TestE2E_DivergenciaExigeJustificativa(t *testing.T) {
	env := setupTestEnv(t)
	turnoID := env.abrirTurno(t, "100.00")

	// Contado 80 contra esperado 100: falta justificativa.
	semJust := do(t, env.server, "POST", "/v1/turnos/fechar",
		jsonBody(t, map[string]any{
			"turno_id":         turnoID,
			"dinheiro_contado": "80.00",
		}), env.token)
	assert.Equal(t, http.StatusBadRequest, semJust.StatusCode)
	semJust.Body.Close()

	comJust := do(t, env.server, "POST", "/v1/turnos/fechar",
		jsonBody(t, map[string]any{
			"turno_id":         turnoID,
			"dinheiro_contado": "80.00",
			"justificativa":    "duas notas de 10 sumiram da gaveta",
		}), env.token)
	require.Equal(t, http.StatusOK, comJust.StatusCode)
	var resumo fechamento
	decodeJSON(t, comJust, &resumo)
	assert.Equal(t, "-20", resumo.Divergencia)
	require.NotNil(t, resumo.Justificativa)

	// O fechamento com divergencia fica registrado na auditoria do turno.
	audResp := do(t, env.server, "GET", "/v1/turnos/"+turnoID+"/auditoria", nil, env.token)
	require.Equal(t, http.StatusOK, audResp.StatusCode)
	var aud struct {
		Data []struct {
			Tipo string `json:"tipo"`
		} `json:"data"`
	}
	decodeJSON(t, audResp, &aud)
	require.NotEmpty(t, aud.Data)
	assert.Equal(t, "fechamento_turno", aud.Data[0].Tipo)
}

func TestE2E_FechamentoIdempotente(t *testing.T) {
	env := setupTestEnv(t)
	turnoID := env.abrirTurno(t, "100.00")

	req := map[string]any{
		"turno_id":           turnoID,
		"dinheiro_contado":   "100.00",
		"chave_idempotencia": "e2e-fechamento-1",
	}

	primeiro := do(t, env.server, "POST", "/v1/turnos/fechar", jsonBody(t, req), env.token)
	require.Equal(t, http.StatusOK, primeiro.StatusCode)
	var a fechamento
	decodeJSON(t, primeiro, &a)

	// Retry com a mesma chave devolve o resumo armazenado.
	replay := do(t, env.server, "POST", "/v1/turnos/fechar", jsonBody(t, req), env.token)
	require.Equal(t, http.StatusOK, replay.StatusCode)
	var b fechamento
	decodeJSON(t, replay, &b)
	assert.Equal(t, a.Divergencia, b.Divergencia)
	assert.Equal(t, a.FechadoEm, b.FechadoEm)

	// Chave diferente em turno ja fechado: conflito.
	req["chave_idempotencia"] = "e2e-fechamento-2"
	outra := do(t, env.server, "POST", "/v1/turnos/fechar", jsonBody(t, req), env.token)
	assert.Equal(t, http.StatusConflict, outra.StatusCode)
	outra.Body.Close()
}

func TestE2E_RecalcularCorrecao(t *testing.T) {
	env := setupTestEnv(t)
	turnoID := env.abrirTurno(t, "100.00")

	fecharResp := do(t, env.server, "POST", "/v1/turnos/fechar",
		jsonBody(t, map[string]any{
			"turno_id":         turnoID,
			"dinheiro_contado": "100.00",
			"stone_acumulado":  "500.00",
		}), env.token)
	require.Equal(t, http.StatusOK, fecharResp.StatusCode)
	fecharResp.Body.Close()

	// O gerente reconta e encontra 90: divergencia -10 com justificativa.
	recalcResp := do(t, env.server, "POST", "/v1/turnos/"+turnoID+"/recalcular",
		jsonBody(t, map[string]any{
			"dinheiro_contado": "90.00",
			"stone_acumulado":  "500.00",
			"justificativa":    "recontagem do gerente encontrou 10 a menos",
		}), env.token)
	require.Equal(t, http.StatusOK, recalcResp.StatusCode)
	var corrigido fechamento
	decodeJSON(t, recalcResp, &corrigido)
	assert.Equal(t, "-10", corrigido.Divergencia)
	assert.True(t, corrigido.Corrigido)
}
