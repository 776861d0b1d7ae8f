package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"crovpos/internal/infra"
	"crovpos/internal/middleware"
	"crovpos/internal/model"
	"crovpos/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func cajaRouter(claims *middleware.JWTClaims, svc *stubCaja) http.Handler {
	h := NewCajaHandler(svc)
	r := newRouter(claims)
	r.POST("/v1/caja/retiros", h.Retiro)
	r.POST("/v1/caja/fondos", h.Fondo)
	r.POST("/v1/caja/corte", h.Corte)
	return r
}

func TestCaja_UsaLaSucursalDelToken(t *testing.T) {
	svc := &stubCaja{}
	w := do(t, cajaRouter(claimsGerente(), svc), http.MethodPost, "/v1/caja/retiros", map[string]any{"monto": 500, "motivo": "banco"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, sucursalA, svc.sucursal)
	assert.Equal(t, model.MovimientoRetiro, svc.tipo)
	assert.Equal(t, "500", svc.monto.String())
	require.NotNil(t, svc.usuario)
	assert.Equal(t, usuarioA, *svc.usuario)
}

func TestCaja_FondoYValidacion(t *testing.T) {
	svc := &stubCaja{}
	r := cajaRouter(claimsGerente(), svc)

	w := do(t, r, http.MethodPost, "/v1/caja/fondos", map[string]any{"monto": 200})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, model.MovimientoFondo, svc.tipo)

	w = do(t, r, http.MethodPost, "/v1/caja/fondos", map[string]any{"monto": -5})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "gt", decode(t, w)["fields"].(map[string]any)["Monto"])
}

func TestCaja_CorteExigeObservacionesDesdeREST(t *testing.T) {
	svc := &stubCaja{}
	w := do(t, cajaRouter(claimsGerente(), svc), http.MethodPost, "/v1/caja/corte", map[string]any{"monto_declarado": 980})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.exigir)
	assert.Equal(t, "980", svc.monto.String())

	svc.err = fmt.Errorf("%w: un desvio critico requiere observaciones", service.ErrDatosInvalidos)
	w = do(t, cajaRouter(claimsGerente(), svc), http.MethodPost, "/v1/caja/corte", map[string]any{"monto_declarado": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "observaciones")
}

func TestCaja_SinSucursalNiToken(t *testing.T) {
	w := do(t, cajaRouter(nil, &stubCaja{}), http.MethodPost, "/v1/caja/retiros", map[string]any{"monto": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTickets_CambiarEstado(t *testing.T) {
	svc := &stubTickets{}
	h := NewTicketsHandler(svc)
	r := newRouter(claimsGerente())
	r.PATCH("/v1/tickets/:folio/estado", h.CambiarEstado)

	w := do(t, r, http.MethodPatch, "/v1/tickets/7/estado", map[string]any{"estado": "cerrado"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, svc.folio)
	assert.Equal(t, "cerrado", svc.estado)

	w = do(t, r, http.MethodPatch, "/v1/tickets/x/estado", map[string]any{"estado": "cerrado"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/v1/tickets/7/estado", map[string]any{"estado": "archivado"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEmpleados_Listar(t *testing.T) {
	t.Run("administrador sin filtro ve todas las sucursales", func(t *testing.T) {
		svc := &stubEmpleados{}
		admin := claimsGerente()
		admin.Rol = model.RolAdministrador
		r := newRouter(admin)
		r.GET("/v1/empleados", NewEmpleadosHandler(svc).Listar)

		w := do(t, r, http.MethodGet, "/v1/empleados", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, svc.llamado)
		assert.Nil(t, svc.filtro)
	})

	t.Run("gerente queda en su sucursal", func(t *testing.T) {
		svc := &stubEmpleados{}
		r := newRouter(claimsGerente())
		r.GET("/v1/empleados", NewEmpleadosHandler(svc).Listar)

		w := do(t, r, http.MethodGet, "/v1/empleados", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.filtro)
		assert.Equal(t, sucursalA, *svc.filtro)

		w = do(t, r, http.MethodGet, "/v1/empleados?sucursal_id="+sucursalB.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestReloj_ZonaPorDefectoInvalidaUsaUTC(t *testing.T) {
	r := nuevoReloj("No/Existe")
	r.now = func() time.Time { return time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC) }

	ahora, err := r.ahora("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ahora.Location())

	_, err = r.ahora("Tierra/Media")
	assert.Error(t, err)
}

type breakerAbierto struct{}

func (breakerAbierto) BreakerState() infra.CBState { return infra.CBOpen }

func TestHealth_RedisCaidoEs503(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer rdb.Close()

	r := newRouter(nil)
	r.GET("/health", Health(db, rdb, breakerAbierto{}))
	w := do(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "error", body["redis"])
	assert.Equal(t, "open", body["llm"])
	assert.Equal(t, false, body["ok"])
}
