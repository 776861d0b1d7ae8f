package handler

import (
	"errors"
	"net/http"

	"crovpos/internal/apierror"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConsultaPreciosHandler serves the public price check of the store
// terminals. No authentication and no side effects; the service caches
// answers in Redis.
type ConsultaPreciosHandler struct{ svc service.ProductoService }

func NewConsultaPreciosHandler(svc service.ProductoService) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{svc: svc}
}

// GetPrecio godoc
// @Summary Consulta de precio por codigo de barras (sin autenticacion)
// @Tags precio
// @Produce json
// @Param sucursal path string true "Sucursal"
// @Param codigo path string true "Codigo de barras o SKU"
// @Success 200 {object} dto.ConsultaPrecioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{sucursal}/{codigo} [get]
func (h *ConsultaPreciosHandler) GetPrecio(c *gin.Context) {
	suc, err := uuid.Parse(c.Param("sucursal"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Sucursal invalida"))
		return
	}
	resp, err := h.svc.ConsultarPrecio(c.Request.Context(), suc, c.Param("codigo"))
	if err != nil {
		if errors.Is(err, service.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
			return
		}
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
