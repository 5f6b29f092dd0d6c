package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/apierror"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/dto"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/middleware"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/service"
)

type VendaHandler struct{ svc service.VendaService }

func NewVendaHandler(svc service.VendaService) *VendaHandler { return &VendaHandler{svc: svc} }

// Registrar godoc
// @Summary Registra uma venda ou consumo interno no turno
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVendaRequest true "Dados da venda"
// @Success 201 {object} dto.VendaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/vendas [post]
func (h *VendaHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Registrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Estornar godoc
// @Summary Estorna (remove) uma venda registrada por engano; em turno fechado, apenas admin
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/vendas/{id} [delete]
func (h *VendaHandler) Estornar(c *gin.Context) {
	vendaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.Estornar(c.Request.Context(), usuarioID, vendaID, esAdmin(c)); err != nil {
		respondErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Listar godoc
// @Summary Lista vendas por turno, tipo ou data
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param turno_id query string false "Filtra por turno"
// @Param tipo query string false "venda | consumo"
// @Param data query string false "YYYY-MM-DD (padrao: hoje)"
// @Success 200 {object} dto.VendaListResponse
// @Router /v1/vendas [get]
func (h *VendaHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	filter := repository.VendaFilter{
		TurnoID: c.Query("turno_id"),
		Tipo:    c.Query("tipo"),
		Data:    c.Query("data"),
		Page:    page,
		Limit:   limit,
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
