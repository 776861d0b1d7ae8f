package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"crovpos/internal/apierror"
	"crovpos/internal/assistant"
	"crovpos/internal/dto"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const diasPrediccionPorDefecto = 7

// Asistente is the chat dispatcher as seen by the manager endpoints.
type Asistente interface {
	Handle(ctx context.Context, in assistant.Entrada) (*assistant.Respuesta, error)
	Accion(ctx context.Context, call assistant.ActionCall, sol assistant.Solicitud) (*assistant.Respuesta, error)
}

// GerenteHandler serves the manager dashboard and its chatbot. Its JSON and
// query parameters are camelCase.
type GerenteHandler struct {
	reportes  service.ReporteService
	asistente Asistente
	reloj     reloj
}

func NewGerenteHandler(reportes service.ReporteService, asistente Asistente, defaultTZ string) *GerenteHandler {
	return &GerenteHandler{reportes: reportes, asistente: asistente, reloj: nuevoReloj(defaultTZ)}
}

// Kpis godoc
// @Summary KPIs de la sucursal para el dia, la semana o el mes de fecha
// @Tags gerente
// @Produce json
// @Security BearerAuth
// @Param sucursalId query string true "Sucursal"
// @Param fecha query string false "YYYY-MM-DD, hoy si se omite"
// @Param timezone query string false "Zona IANA"
// @Success 200 {object} kpi.Resumen
// @Failure 400 {object} apierror.APIError
// @Router /gerente/kpisDia [get]
// @Router /gerente/kpisSemana [get]
// @Router /gerente/kpisMes [get]
func (h *GerenteHandler) Kpis(periodo service.Periodo) gin.HandlerFunc {
	return func(c *gin.Context) {
		suc, ok := sucursalDe(c, "sucursalId", false)
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
		resp, err := h.reportes.Kpis(c.Request.Context(), suc, periodo, fecha)
		if err != nil {
			responderError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *GerenteHandler) Dashboard(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursalId", false)
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
	resp, err := h.reportes.Dashboard(c.Request.Context(), suc, fecha)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GerenteHandler) PrediccionVentas(c *gin.Context) {
	suc, ok := sucursalDe(c, "sucursalId", false)
	if !ok {
		return
	}
	dias, ok := enteroDe(c, "dias", diasPrediccionPorDefecto)
	if !ok {
		return
	}
	ahora, ok := h.reloj.ahoraDe(c)
	if !ok {
		return
	}
	resp, err := h.reportes.Prediccion(c.Request.Context(), suc, dias, ahora)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GerenteHandler) TopProductos(c *gin.Context) {
	h.top(c, h.reportes.TopProductos)
}

func (h *GerenteHandler) TopClientes(c *gin.Context) {
	h.top(c, h.reportes.TopClientes)
}

type consultaTop func(ctx context.Context, sucursalID uuid.UUID, limite int, ahora time.Time) (*dto.TopResponse, error)

func (h *GerenteHandler) top(c *gin.Context, consultar consultaTop) {
	suc, ok := sucursalDe(c, "sucursalId", false)
	if !ok {
		return
	}
	limite, ok := enteroDe(c, "limite", 0)
	if !ok {
		return
	}
	ahora, ok := h.reloj.ahoraDe(c)
	if !ok {
		return
	}
	resp, err := consultar(c.Request.Context(), suc, limite, ahora)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConsultaSql godoc
// @Summary Chat del gerente: ejecuta una accion del catalogo o responde con una consulta de solo lectura
// @Tags gerente
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ConsultaRequest true "Mensaje e historial"
// @Success 200 {object} dto.ConsultaResponse
// @Failure 400 {object} apierror.APIError
// @Router /gerente/consultaSql [post]
func (h *GerenteHandler) ConsultaSql(c *gin.Context) {
	var req dto.ConsultaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	suc := uuid.MustParse(req.SucursalID) // validated by the uuid tag
	if !puedeOperar(c, suc) {
		return
	}
	ahora, err := h.reloj.ahora(req.Timezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("timezone invalida"))
		return
	}

	historial := make([]assistant.Mensaje, len(req.History))
	for i, m := range req.History {
		historial[i] = assistant.Mensaje{Role: m.Role, Content: m.Content}
	}
	resp, err := h.asistente.Handle(c.Request.Context(), assistant.Entrada{
		Mensaje:   req.Message,
		Historial: historial,
		Solicitud: assistant.Solicitud{SucursalID: suc, UsuarioID: usuarioDe(c), Ahora: ahora},
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEjecucionConsulta) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return
		}
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, respuestaChat(resp))
}

// Acciones lists the action catalog offered to the language model.
func (h *GerenteHandler) Acciones(c *gin.Context) {
	c.JSON(http.StatusOK, assistant.Catalogo())
}

// EjecutarAccion godoc
// @Summary Ejecuta una accion del catalogo sin pasar por el modelo
// @Tags gerente
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accion path string true "Accion del catalogo"
// @Param body body object true "Argumentos de la accion mas sucursalId"
// @Success 200 {object} dto.ConsultaResponse
// @Failure 400 {object} apierror.DomainError
// @Failure 404 {object} apierror.APIError
// @Router /gerente/acciones/{accion} [post]
func (h *GerenteHandler) EjecutarAccion(c *gin.Context) {
	kind := assistant.ActionKind(c.Param("accion"))
	if _, ok := assistant.BuscarAccion(kind); !ok {
		c.JSON(http.StatusNotFound, apierror.New("Accion desconocida"))
		return
	}

	args := map[string]any{}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	raw, _ := args["sucursalId"].(string)
	suc, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"sucursalId": "uuid"}))
		return
	}
	if !puedeOperar(c, suc) {
		return
	}
	tz, _ := args["timezone"].(string)
	ahora, err := h.reloj.ahora(tz)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("timezone invalida"))
		return
	}
	delete(args, "sucursalId")
	delete(args, "timezone")

	resp, err := h.asistente.Accion(c.Request.Context(),
		assistant.ActionCall{Kind: kind, Args: args},
		assistant.Solicitud{SucursalID: suc, UsuarioID: usuarioDe(c), Ahora: ahora})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, respuestaChat(resp))
}

func respuestaChat(r *assistant.Respuesta) dto.ConsultaResponse {
	return dto.ConsultaResponse{Respuesta: r.Texto, Accion: string(r.Accion), Data: r.Data, Filas: r.Filas}
}

func enteroDe(c *gin.Context, name string, porDefecto int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return porDefecto, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" debe ser un entero"))
		return 0, false
	}
	return n, true
}
