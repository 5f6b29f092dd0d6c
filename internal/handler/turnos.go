package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/apierror"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/middleware"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/service"
)

type TurnoHandler struct{ svc service.TurnoService }

func NewTurnoHandler(svc service.TurnoService) *TurnoHandler { return &TurnoHandler{svc: svc} }

// Abrir godoc
// @Summary Abre um novo turno de caixa
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirTurnoRequest true "Dados de abertura"
// @Success 201 {object} dto.TurnoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/turnos/abrir [post]
func (h *TurnoHandler) Abrir(c *gin.Context) {
	var req dto.AbrirTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha o turno com conferencia de caixa
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharTurnoRequest true "Conferencia de fechamento"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/turnos/fechar [post]
func (h *TurnoHandler) Fechar(c *gin.Context) {
	var req dto.FecharTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Fechar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalcular godoc
// @Summary Recalcula o fechamento de um turno (correcao administrativa)
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do turno"
// @Param body body dto.RecalcularTurnoRequest true "Valores corrigidos"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/turnos/{id}/recalcular [post]
func (h *TurnoHandler) Recalcular(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RecalcularTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Recalcular(c.Request.Context(), adminID, turnoID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAtivo returns the currently open shift of the authenticated operator.
func (h *TurnoHandler) GetAtivo(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de usuario invalido"))
		return
	}
	resp, err := h.svc.ObterAtivo(c.Request.Context(), usuarioID)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPorID godoc
// @Summary Detalha um turno com sangrias e equipe
// @Tags turnos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do turno"
// @Success 200 {object} dto.TurnoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/turnos/{id} [get]
func (h *TurnoHandler) GetPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarAbertos feeds the live monitor: every open drawer with its counters.
func (h *TurnoHandler) ListarAbertos(c *gin.Context) {
	resp, err := h.svc.ListarAbertos(c.Request.Context())
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Historico returns a paginated list of closed shifts.
func (h *TurnoHandler) Historico(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, total, err := h.svc.Historico(c.Request.Context(), page, limit)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": total, "page": page, "limit": limit})
}

// RegistrarSangria godoc
// @Summary Registra uma retirada de dinheiro do caixa
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do turno"
// @Param body body dto.SangriaRequest true "Dados da sangria"
// @Success 201 {object} dto.SangriaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/turnos/{id}/sangrias [post]
func (h *TurnoHandler) RegistrarSangria(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.SangriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegistrarSangria(c.Request.Context(), usuarioID, turnoID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EstornarSangria removes a mistaken withdrawal. On closed shifts only admins
// may retract, and the summary stays stale until a recalculation.
func (h *TurnoHandler) EstornarSangria(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	sangriaID, err := uuid.Parse(c.Param("sangriaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de sangria invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.EstornarSangria(c.Request.Context(), usuarioID, turnoID, sangriaID, esAdmin(c)); err != nil {
		respondErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarSangrias lists a shift's withdrawals, newest first.
func (h *TurnoHandler) ListarSangrias(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ListarSangrias(c.Request.Context(), turnoID)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// esAdmin reports whether the request carries the admin role.
func esAdmin(c *gin.Context) bool {
	claims := middleware.GetClaims(c)
	return claims != nil && claims.Papel == model.PapelAdmin
}
