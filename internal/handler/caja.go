package handler

import (
	"net/http"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
)

const historialCortesPorDefecto = 30

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Gasto godoc
// @Summary Registra un gasto operativo pagado con el efectivo de la caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sucursal_id query string false "Sucursal, la del usuario si se omite"
// @Param body body dto.GastoRequest true "Gasto"
// @Success 201 {object} dto.ResultadoAccion
// @Failure 400 {object} apierror.DomainError
// @Router /v1/caja/gastos [post]
func (h *CajaHandler) Gasto(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	var req dto.GastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarGasto(c.Request.Context(), suc, usuarioDe(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) Retiro(c *gin.Context) { h.movimiento(c, model.MovimientoRetiro) }

func (h *CajaHandler) Fondo(c *gin.Context) { h.movimiento(c, model.MovimientoFondo) }

func (h *CajaHandler) movimiento(c *gin.Context, tipo string) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	var req dto.MovimientoCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), suc, usuarioDe(c), tipo, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) Resumen(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), suc)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Corte godoc
// @Summary Corte de caja ciego: compara el monto declarado con el esperado
// @Description Un desvio critico exige observaciones.
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sucursal_id query string false "Sucursal, la del usuario si se omite"
// @Param body body dto.CorteCajaRequest true "Declaracion del corte"
// @Success 200 {object} dto.CorteCajaResponse
// @Failure 400 {object} apierror.DomainError
// @Router /v1/caja/corte [post]
func (h *CajaHandler) Corte(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	var req dto.CorteCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Corte(c.Request.Context(), suc, usuarioDe(c), req, true)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) Historial(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	limit, ok := enteroDe(c, "limit", historialCortesPorDefecto)
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), suc, limit)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
