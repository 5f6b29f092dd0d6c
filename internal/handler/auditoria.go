package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/apierror"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/service"
)

// AuditoriaHandler exposes the read side of the audit trail (admin only).
type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// ListarPorTurno returns every audit event of one shift, oldest first.
func (h *AuditoriaHandler) ListarPorTurno(c *gin.Context) {
	turnoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ListarPorTurno(c.Request.Context(), turnoID)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Listar returns the global audit trail, newest first.
func (h *AuditoriaHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.Listar(c.Request.Context(), page, limit)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
