package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crovpos/internal/assistant"
	"crovpos/internal/dto"
	"crovpos/internal/kpi"
	"crovpos/internal/middleware"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// Unused interface methods panic through the nil embedded interface.

type stubReportes struct {
	service.ReporteService
	err error

	sucursal uuid.UUID
	periodo  service.Periodo
	fecha    time.Time
	dias     int
	limite   int
}

func (s *stubReportes) Kpis(_ context.Context, suc uuid.UUID, p service.Periodo, fecha time.Time) (*kpi.Resumen, error) {
	s.sucursal, s.periodo, s.fecha = suc, p, fecha
	if s.err != nil {
		return nil, s.err
	}
	v, _ := p.Ventana(fecha)
	return &kpi.Resumen{Ventana: v, TotalVentas: decimal.NewFromInt(150), NumeroTransacciones: 3}, nil
}

func (s *stubReportes) Dashboard(_ context.Context, suc uuid.UUID, fecha time.Time) (*dto.DashboardResponse, error) {
	s.sucursal, s.fecha = suc, fecha
	return &dto.DashboardResponse{}, s.err
}

func (s *stubReportes) Prediccion(_ context.Context, suc uuid.UUID, dias int, _ time.Time) (*kpi.Prediccion, error) {
	s.sucursal, s.dias = suc, dias
	if s.err != nil {
		return nil, s.err
	}
	p := kpi.Predecir(decimal.NewFromInt(300), dias)
	return &p, nil
}

func (s *stubReportes) TopProductos(_ context.Context, suc uuid.UUID, limite int, _ time.Time) (*dto.TopResponse, error) {
	s.sucursal, s.limite = suc, limite
	return &dto.TopResponse{Items: []kpi.TopItem{{Nombre: "Pan", Cantidad: 9}}}, s.err
}

func (s *stubReportes) TopClientes(_ context.Context, suc uuid.UUID, limite int, _ time.Time) (*dto.TopResponse, error) {
	s.sucursal, s.limite = suc, limite
	return &dto.TopResponse{Items: []kpi.TopItem{{Nombre: kpi.PublicoEnGeneral}}}, s.err
}

type stubAsistente struct {
	resp *assistant.Respuesta
	err  error

	entrada assistant.Entrada
	call    assistant.ActionCall
	sol     assistant.Solicitud
	llamado bool
}

func (s *stubAsistente) Handle(_ context.Context, in assistant.Entrada) (*assistant.Respuesta, error) {
	s.entrada, s.llamado = in, true
	return s.resp, s.err
}

func (s *stubAsistente) Accion(_ context.Context, call assistant.ActionCall, sol assistant.Solicitud) (*assistant.Respuesta, error) {
	s.call, s.sol, s.llamado = call, sol, true
	return s.resp, s.err
}

type stubCaja struct {
	service.CajaService
	err error

	sucursal uuid.UUID
	usuario  *uuid.UUID
	tipo     string
	monto    decimal.Decimal
	exigir   bool
}

func (s *stubCaja) RegistrarMovimiento(_ context.Context, suc uuid.UUID, usr *uuid.UUID, tipo string, req dto.MovimientoCajaRequest) (*dto.ResultadoAccion, error) {
	s.sucursal, s.usuario, s.tipo, s.monto = suc, usr, tipo, req.Monto
	if s.err != nil {
		return nil, s.err
	}
	return dto.Ok("Movimiento registrado", nil), nil
}

func (s *stubCaja) Corte(_ context.Context, suc uuid.UUID, usr *uuid.UUID, req dto.CorteCajaRequest, exigir bool) (*dto.CorteCajaResponse, error) {
	s.sucursal, s.usuario, s.monto, s.exigir = suc, usr, req.MontoDeclarado, exigir
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CorteCajaResponse{MontoDeclarado: req.MontoDeclarado}, nil
}

type stubTickets struct {
	service.TicketService
	folio  int
	estado string
}

func (s *stubTickets) CambiarEstado(_ context.Context, _ uuid.UUID, folio int, estado string) (*dto.ResultadoAccion, error) {
	s.folio, s.estado = folio, estado
	return dto.Ok("Ticket actualizado", nil), nil
}

type stubEmpleados struct {
	service.EmpleadoService
	filtro  *uuid.UUID
	llamado bool
}

func (s *stubEmpleados) Listar(_ context.Context, suc *uuid.UUID, _ bool) ([]dto.UsuarioResponse, error) {
	s.filtro, s.llamado = suc, true
	return []dto.UsuarioResponse{}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

var (
	sucursalA = uuid.MustParse("6f1c2f7e-3a43-4c55-9d1e-0b4f6f7f0a01")
	sucursalB = uuid.MustParse("6f1c2f7e-3a43-4c55-9d1e-0b4f6f7f0a02")
	usuarioA  = uuid.MustParse("0d9a3e55-7f0c-4bb8-a0a7-2d44c5ab1e10")
)

func claimsGerente() *middleware.JWTClaims {
	return &middleware.JWTClaims{UserID: usuarioA.String(), Username: "gerente", Rol: "gerente", SucursalID: sucursalA.String()}
}

// newRouter installs claims the way JWTAuth would.
func newRouter(claims *middleware.JWTClaims) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ClaimsKey, claims)
		}
		c.Next()
	})
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}
