package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"crovpos/internal/assistant"
	"crovpos/internal/middleware"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gerenteRouter(claims *middleware.JWTClaims, rep *stubReportes, asis *stubAsistente) *gin.Engine {
	h := NewGerenteHandler(rep, asis, "America/Mexico_City")
	r := newRouter(claims)
	g := r.Group("/gerente")
	g.GET("/kpisDia", h.Kpis(service.PeriodoDia))
	g.GET("/kpisMes", h.Kpis(service.PeriodoMes))
	g.GET("/prediccionVentas", h.PrediccionVentas)
	g.GET("/topProductos", h.TopProductos)
	g.GET("/topClientes", h.TopClientes)
	g.GET("/dashboard", h.Dashboard)
	g.POST("/consultaSql", h.ConsultaSql)
	g.GET("/acciones", h.Acciones)
	g.POST("/acciones/:accion", h.EjecutarAccion)
	return r
}

func TestKpis_RequiereSucursal(t *testing.T) {
	rep := &stubReportes{}
	w := do(t, gerenteRouter(claimsGerente(), rep, nil), http.MethodGet, "/gerente/kpisDia", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "sucursalId")
}

func TestKpis_OtraSucursalProhibida(t *testing.T) {
	rep := &stubReportes{}
	w := do(t, gerenteRouter(claimsGerente(), rep, nil), http.MethodGet, "/gerente/kpisDia?sucursalId="+sucursalB.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestKpis_AdministradorOperaCualquierSucursal(t *testing.T) {
	rep := &stubReportes{}
	admin := claimsGerente()
	admin.Rol = "administrador"
	w := do(t, gerenteRouter(admin, rep, nil), http.MethodGet, "/gerente/kpisDia?sucursalId="+sucursalB.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sucursalB, rep.sucursal)
}

func TestKpis_FechaEnZonaDelSolicitante(t *testing.T) {
	rep := &stubReportes{}
	url := fmt.Sprintf("/gerente/kpisMes?sucursalId=%s&fecha=2024-02-10&timezone=America/Bogota", sucursalA)
	w := do(t, gerenteRouter(claimsGerente(), rep, nil), http.MethodGet, url, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.PeriodoMes, rep.periodo)
	assert.Equal(t, "America/Bogota", rep.fecha.Location().String())
	assert.Equal(t, "2024-02-10", rep.fecha.Format("2006-01-02"))

	body := decode(t, w)
	assert.EqualValues(t, 3, body["numeroTransacciones"])
	assert.Contains(t, body["hasta"], "2024-02-29T23:59:59.999")
}

func TestKpis_ParametrosInvalidos(t *testing.T) {
	r := gerenteRouter(claimsGerente(), &stubReportes{}, nil)
	base := "/gerente/kpisDia?sucursalId=" + sucursalA.String()

	for name, url := range map[string]string{
		"fecha":    base + "&fecha=10/02/2024",
		"timezone": base + "&timezone=Marte/Olympus",
		"sucursal": "/gerente/kpisDia?sucursalId=abc",
	} {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, url, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPrediccion_DiasPorDefectoYErrorDeDominio(t *testing.T) {
	rep := &stubReportes{}
	r := gerenteRouter(claimsGerente(), rep, nil)

	w := do(t, r, http.MethodGet, "/gerente/prediccionVentas?sucursalId="+sucursalA.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, diasPrediccionPorDefecto, rep.dias)

	rep.err = fmt.Errorf("%w: dias debe ser mayor a cero", service.ErrDatosInvalidos)
	w = do(t, r, http.MethodGet, "/gerente/prediccionVentas?dias=0&sucursalId="+sucursalA.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "dias debe ser mayor a cero")

	w = do(t, r, http.MethodGet, "/gerente/prediccionVentas?dias=cinco&sucursalId="+sucursalA.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTop_PasaLimite(t *testing.T) {
	rep := &stubReportes{}
	r := gerenteRouter(claimsGerente(), rep, nil)

	w := do(t, r, http.MethodGet, "/gerente/topProductos?limite=5&sucursalId="+sucursalA.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, rep.limite)

	w = do(t, r, http.MethodGet, "/gerente/topClientes?sucursalId="+sucursalA.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, rep.limite)
	assert.Contains(t, w.Body.String(), "Público en general")
}

func TestErrorInesperadoEs500SinDetalle(t *testing.T) {
	rep := &stubReportes{err: errors.New("pq: connection refused")}
	w := do(t, gerenteRouter(claimsGerente(), rep, nil), http.MethodGet, "/gerente/dashboard?sucursalId="+sucursalA.String(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestConsultaSql_Validacion(t *testing.T) {
	asis := &stubAsistente{}
	r := gerenteRouter(claimsGerente(), &stubReportes{}, asis)

	w := do(t, r, http.MethodPost, "/gerente/consultaSql", `{"message":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/gerente/consultaSql", map[string]any{"sucursalId": sucursalA.String()})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Equal(t, "required", fields["Message"])

	w = do(t, r, http.MethodPost, "/gerente/consultaSql", map[string]any{"message": "hola", "sucursalId": sucursalB.String()})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, asis.llamado)
}

func TestConsultaSql_PasaHistorialYSolicitante(t *testing.T) {
	asis := &stubAsistente{resp: &assistant.Respuesta{Texto: "Vendiste $150.00 hoy.", Accion: assistant.KpisDia}}
	r := gerenteRouter(claimsGerente(), &stubReportes{}, asis)

	w := do(t, r, http.MethodPost, "/gerente/consultaSql", map[string]any{
		"message":    "¿cuánto vendí hoy?",
		"sucursalId": sucursalA.String(),
		"timezone":   "America/Monterrey",
		"history":    []map[string]string{{"role": "user", "content": "hola"}, {"role": "assistant", "content": "¿En qué te ayudo?"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Vendiste $150.00 hoy.", body["respuesta"])
	assert.Equal(t, string(assistant.KpisDia), body["accion"])

	assert.Equal(t, "¿cuánto vendí hoy?", asis.entrada.Mensaje)
	assert.Len(t, asis.entrada.Historial, 2)
	assert.Equal(t, sucursalA, asis.entrada.SucursalID)
	require.NotNil(t, asis.entrada.UsuarioID)
	assert.Equal(t, usuarioA, *asis.entrada.UsuarioID)
	assert.Equal(t, "America/Monterrey", asis.entrada.Ahora.Location().String())
}

func TestConsultaSql_FalloDeEjecucionEs400(t *testing.T) {
	asis := &stubAsistente{err: fmt.Errorf("%w: timeout", assistant.ErrEjecucionConsulta)}
	r := gerenteRouter(claimsGerente(), &stubReportes{}, asis)

	w := do(t, r, http.MethodPost, "/gerente/consultaSql", map[string]any{"message": "ventas por mes", "sucursalId": sucursalA.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "no se pudo ejecutar la consulta")
}

func TestAcciones_ListaElCatalogo(t *testing.T) {
	w := do(t, gerenteRouter(claimsGerente(), &stubReportes{}, nil), http.MethodGet, "/gerente/acciones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accion":"registrar_venta"`)
	assert.Contains(t, w.Body.String(), `"accion":"cerrar_ticket_soporte"`)
}

func TestEjecutarAccion(t *testing.T) {
	t.Run("desconocida", func(t *testing.T) {
		asis := &stubAsistente{}
		w := do(t, gerenteRouter(claimsGerente(), &stubReportes{}, asis), http.MethodPost, "/gerente/acciones/borrar_todo", map[string]any{})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, asis.llamado)
	})

	t.Run("sin sucursal", func(t *testing.T) {
		asis := &stubAsistente{}
		w := do(t, gerenteRouter(claimsGerente(), &stubReportes{}, asis), http.MethodPost, "/gerente/acciones/registrar_gasto", map[string]any{"monto": 10})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.False(t, asis.llamado)
	})

	t.Run("quita sucursal y zona de los argumentos", func(t *testing.T) {
		asis := &stubAsistente{resp: &assistant.Respuesta{Texto: "Gasto registrado.", Accion: assistant.RegistrarGasto}}
		w := do(t, gerenteRouter(claimsGerente(), &stubReportes{}, asis), http.MethodPost, "/gerente/acciones/registrar_gasto", map[string]any{
			"sucursalId":  sucursalA.String(),
			"timezone":    "America/Mexico_City",
			"descripcion": "Garrafones",
			"monto":       120.5,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, assistant.RegistrarGasto, asis.call.Kind)
		assert.Equal(t, map[string]any{"descripcion": "Garrafones", "monto": 120.5}, asis.call.Args)
		assert.Equal(t, sucursalA, asis.sol.SucursalID)
	})

	t.Run("error de dominio", func(t *testing.T) {
		asis := &stubAsistente{err: fmt.Errorf("%w: producto \"pan\"", service.ErrNoEncontrado)}
		w := do(t, gerenteRouter(claimsGerente(), &stubReportes{}, asis), http.MethodPost, "/gerente/acciones/desactivar_producto", map[string]any{
			"sucursalId": sucursalA.String(), "nombre": "pan",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["error"], "no encontrado")
	})
}
