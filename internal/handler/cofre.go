package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/apierror"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/middleware"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/service"
)

// CofreHandler exposes the vault ledger. All routes are admin-only; the
// router wires the role check.
type CofreHandler struct{ svc service.CofreService }

func NewCofreHandler(svc service.CofreService) *CofreHandler { return &CofreHandler{svc: svc} }

// ConfirmarEnvelope godoc
// @Summary Confirma o envelope de um turno fechado no cofre
// @Tags cofre
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do turno"
// @Success 201 {object} dto.MovimentoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cofre/envelopes/{id} [post]
func (h *CofreHandler) ConfirmarEnvelope(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ConfirmarEnvelope(c.Request.Context(), adminID, turnoID)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EnvelopeDoTurno returns the vault entry a shift produced, if any.
func (h *CofreHandler) EnvelopeDoTurno(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.EnvelopeDoTurno(c.Request.Context(), turnoID)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarDespesa godoc
// @Summary Registra uma despesa paga com dinheiro do cofre
// @Tags cofre
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DespesaRequest true "Dados da despesa"
// @Success 201 {object} dto.MovimentoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/cofre/despesas [post]
func (h *CofreHandler) RegistrarDespesa(c *gin.Context) {
	var req dto.DespesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegistrarDespesa(c.Request.Context(), adminID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Saldo godoc
// @Summary Saldo atual do cofre (fold sobre o razao)
// @Tags cofre
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SaldoResponse
// @Router /v1/cofre/saldo [get]
func (h *CofreHandler) Saldo(c *gin.Context) {
	resp, err := h.svc.Saldo(c.Request.Context())
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimentos returns the paginated vault ledger, newest first.
func (h *CofreHandler) ListarMovimentos(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.ListarMovimentos(c.Request.Context(), page, limit)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
