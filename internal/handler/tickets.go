package handler

import (
	"net/http"
	"strconv"

	"crovpos/internal/apierror"
	"crovpos/internal/dto"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketsHandler struct{ svc service.TicketService }

func NewTicketsHandler(svc service.TicketService) *TicketsHandler {
	return &TicketsHandler{svc: svc}
}

func (h *TicketsHandler) Crear(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	var req dto.CrearTicketRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), suc, usuarioDe(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar filters by the optional estado query parameter.
func (h *TicketsHandler) Listar(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), suc, c.Query("estado"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketsHandler) CambiarEstado(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	folio, err := strconv.Atoi(c.Param("folio"))
	if err != nil || folio < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("Folio invalido"))
		return
	}
	var req dto.CambiarEstadoTicketRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), suc, folio, req.Estado)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
