package handler

import (
	"net/http"

	"crovpos/internal/dto"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct {
	svc   service.VentaService
	reloj reloj
}

func NewVentasHandler(svc service.VentaService, defaultTZ string) *VentasHandler {
	return &VentasHandler{svc: svc, reloj: nuevoReloj(defaultTZ)}
}

// Registrar godoc
// @Summary      Registrar una nueva venta
// @Description  Crea la venta con su detalle y descuenta stock en una sola transaccion.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        sucursal_id query string false "Sucursal, la del usuario si se omite"
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.DomainError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), suc, usuarioDe(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarDia returns the sales of fecha (today by default) in the requester's
// timezone.
func (h *VentasHandler) ListarDia(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	ahora, ok := h.reloj.ahoraDe(c)
	if !ok {
		return
	}
	fecha, ok := fechaDe(c, "fecha", ahora)
	if !ok {
		return
	}
	resp, err := h.svc.ListarDia(c.Request.Context(), suc, fecha)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Devolver godoc
// @Summary      Devolucion de una venta
// @Description  Marca la venta como devuelta y restaura el stock.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la venta"
// @Success      200  {object} dto.ResultadoAccion
// @Failure      400  {object} apierror.DomainError
// @Router       /v1/ventas/{id}/devolucion [post]
func (h *VentasHandler) Devolver(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursal_id", true)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Devolver(c.Request.Context(), suc, id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
