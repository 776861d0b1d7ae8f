package assistant

import (
	"context"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/kpi"
	"crovpos/internal/repository"
	"crovpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Fake completion service ──────────────────────────────────────────────────

type fakeLLM struct {
	call       *ActionCall
	chooseErr  error
	query      *StructuredQuery
	queryErr   error
	resumen    string
	resumenErr error

	historial []Mensaje
	queries   int
	resumenes int
}

func (f *fakeLLM) ChooseAction(_ context.Context, _ string, historial []Mensaje, _ []Accion) (*ActionCall, error) {
	f.historial = historial
	return f.call, f.chooseErr
}

func (f *fakeLLM) GenerateQuery(context.Context, string, []Mensaje, SchemaDescription) (*StructuredQuery, error) {
	f.queries++
	return f.query, f.queryErr
}

func (f *fakeLLM) Summarize(context.Context, string, []map[string]any) (string, error) {
	f.resumenes++
	return f.resumen, f.resumenErr
}

// ── Fake consulta repository ─────────────────────────────────────────────────

type fakeConsultas struct {
	planes []repository.ConsultaPlan
	filas  []map[string]any
	err    error
}

var _ repository.ConsultaRepository = (*fakeConsultas)(nil)

func (f *fakeConsultas) Ejecutar(_ context.Context, plan repository.ConsultaPlan) ([]map[string]any, error) {
	f.planes = append(f.planes, plan)
	return f.filas, f.err
}

// ── Fake domain services ─────────────────────────────────────────────────────
// Each fake embeds its interface and implements only what the catalog
// reaches; every call is written to the shared log.

type bitacora struct {
	llamadas []string
	args     []any
	err      error
}

func (b *bitacora) anotar(nombre string, arg any) error {
	b.llamadas = append(b.llamadas, nombre)
	b.args = append(b.args, arg)
	return b.err
}

func ok(msg string) *dto.ResultadoAccion { return dto.Ok(msg, nil) }

type fakeReportes struct {
	service.ReporteService
	*bitacora
}

func (f fakeReportes) Kpis(_ context.Context, _ uuid.UUID, p service.Periodo, fecha time.Time) (*kpi.Resumen, error) {
	if err := f.anotar("Kpis", p); err != nil {
		return nil, err
	}
	v, _ := p.Ventana(fecha)
	return &kpi.Resumen{Ventana: v, TotalVentas: decimal.NewFromInt(150), NumeroTransacciones: 2, TicketPromedio: decimal.NewFromInt(75)}, nil
}

func (f fakeReportes) Prediccion(_ context.Context, _ uuid.UUID, dias int, _ time.Time) (*kpi.Prediccion, error) {
	if err := f.anotar("Prediccion", dias); err != nil {
		return nil, err
	}
	p := kpi.Predecir(decimal.NewFromInt(300), dias)
	return &p, nil
}

func (f fakeReportes) TopProductos(_ context.Context, _ uuid.UUID, limite int, _ time.Time) (*dto.TopResponse, error) {
	if err := f.anotar("TopProductos", limite); err != nil {
		return nil, err
	}
	return &dto.TopResponse{Items: []kpi.TopItem{
		{Nombre: "Coca Cola 600ml", Cantidad: 12, Monto: decimal.NewFromInt(216)},
		{Nombre: kpi.ProductoDesconocido, Cantidad: 3, Monto: decimal.NewFromInt(30)},
	}}, nil
}

func (f fakeReportes) TopClientes(_ context.Context, _ uuid.UUID, limite int, _ time.Time) (*dto.TopResponse, error) {
	if err := f.anotar("TopClientes", limite); err != nil {
		return nil, err
	}
	return &dto.TopResponse{Items: []kpi.TopItem{{Nombre: kpi.PublicoEnGeneral, Cantidad: 40, Monto: decimal.NewFromInt(1500)}}}, nil
}

type fakeProductos struct {
	service.ProductoService
	*bitacora
}

func (f fakeProductos) BajoStock(context.Context, uuid.UUID) ([]dto.ProductoResponse, error) {
	if err := f.anotar("BajoStock", nil); err != nil {
		return nil, err
	}
	return []dto.ProductoResponse{{Nombre: "Sabritas Original", Stock: 2, StockMinimo: 5}}, nil
}

func (f fakeProductos) Crear(_ context.Context, _ uuid.UUID, req dto.CrearProductoRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Productos.Crear", req); err != nil {
		return nil, err
	}
	return ok("Producto " + req.Nombre + " registrado."), nil
}

func (f fakeProductos) ActualizarPrecio(_ context.Context, _ uuid.UUID, nombre string, precio decimal.Decimal) (*dto.ResultadoAccion, error) {
	if err := f.anotar("ActualizarPrecio", precio); err != nil {
		return nil, err
	}
	return ok("Precio de " + nombre + " actualizado."), nil
}

func (f fakeProductos) CambiarEstadoPorNombre(_ context.Context, _ uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Productos.CambiarEstado", activo); err != nil {
		return nil, err
	}
	return ok("Producto " + nombre + " actualizado."), nil
}

type fakeVentas struct {
	service.VentaService
	*bitacora
}

func (f fakeVentas) RegistrarRapida(_ context.Context, _ uuid.UUID, _ *uuid.UUID, req dto.VentaRapidaRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Ventas.RegistrarRapida", req); err != nil {
		return nil, err
	}
	return ok("Venta #1 registrada."), nil
}

type fakeCompras struct {
	service.CompraService
	*bitacora
}

func (f fakeCompras) RegistrarRapida(_ context.Context, _ uuid.UUID, _ *uuid.UUID, req dto.CompraRapidaRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Compras.RegistrarRapida", req); err != nil {
		return nil, err
	}
	return ok("Compra registrada."), nil
}

type fakeCaja struct {
	service.CajaService
	*bitacora
}

func (f fakeCaja) RegistrarGasto(_ context.Context, _ uuid.UUID, _ *uuid.UUID, req dto.GastoRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("RegistrarGasto", req); err != nil {
		return nil, err
	}
	return ok("Gasto registrado."), nil
}

func (f fakeCaja) RegistrarMovimiento(_ context.Context, _ uuid.UUID, _ *uuid.UUID, tipo string, _ dto.MovimientoCajaRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("RegistrarMovimiento", tipo); err != nil {
		return nil, err
	}
	return ok("Movimiento de " + tipo + " registrado."), nil
}

func (f fakeCaja) Resumen(context.Context, uuid.UUID) (*dto.ResumenCajaResponse, error) {
	if err := f.anotar("Resumen", nil); err != nil {
		return nil, err
	}
	return &dto.ResumenCajaResponse{MontoEsperado: decimal.NewFromInt(1200)}, nil
}

func (f fakeCaja) Corte(_ context.Context, _ uuid.UUID, _ *uuid.UUID, req dto.CorteCajaRequest, exigir bool) (*dto.CorteCajaResponse, error) {
	if err := f.anotar("Corte", exigir); err != nil {
		return nil, err
	}
	return &dto.CorteCajaResponse{
		Resumen:        dto.ResumenCajaResponse{MontoEsperado: decimal.NewFromInt(1200)},
		MontoDeclarado: req.MontoDeclarado,
		Desvio:         dto.DesvioResponse{Monto: req.MontoDeclarado.Sub(decimal.NewFromInt(1200)), Clasificacion: "normal"},
	}, nil
}

type fakeClientes struct {
	service.ClienteService
	*bitacora
}

func (f fakeClientes) Crear(_ context.Context, _ uuid.UUID, req dto.CrearClienteRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Clientes.Crear", req); err != nil {
		return nil, err
	}
	return ok("Cliente " + req.Nombre + " registrado."), nil
}

func (f fakeClientes) CambiarEstadoPorNombre(_ context.Context, _ uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Clientes.CambiarEstado", activo); err != nil {
		return nil, err
	}
	return ok("Cliente " + nombre + " actualizado."), nil
}

type fakeProveedores struct {
	service.ProveedorService
	*bitacora
}

func (f fakeProveedores) Crear(_ context.Context, _ uuid.UUID, req dto.CrearProveedorRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Proveedores.Crear", req); err != nil {
		return nil, err
	}
	return ok("Proveedor " + req.Nombre + " registrado."), nil
}

func (f fakeProveedores) CambiarEstadoPorNombre(_ context.Context, _ uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Proveedores.CambiarEstado", activo); err != nil {
		return nil, err
	}
	return ok("Proveedor " + nombre + " actualizado."), nil
}

type fakeEmpleados struct {
	service.EmpleadoService
	*bitacora
}

func (f fakeEmpleados) CambiarEstadoPorNombre(_ context.Context, _ uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Empleados.CambiarEstado", activo); err != nil {
		return nil, err
	}
	return ok("Empleado " + nombre + " actualizado."), nil
}

type fakeTickets struct {
	service.TicketService
	*bitacora
}

func (f fakeTickets) Crear(_ context.Context, _ uuid.UUID, _ *uuid.UUID, req dto.CrearTicketRequest) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Tickets.Crear", req); err != nil {
		return nil, err
	}
	return ok("Ticket de soporte #1 creado."), nil
}

func (f fakeTickets) CambiarEstado(_ context.Context, _ uuid.UUID, folio int, estado string) (*dto.ResultadoAccion, error) {
	if err := f.anotar("Tickets.CambiarEstado", estado); err != nil {
		return nil, err
	}
	return ok("Ticket actualizado."), nil
}

func newFakeServicios() (*Servicios, *bitacora) {
	b := &bitacora{}
	return &Servicios{
		Reportes:    fakeReportes{bitacora: b},
		Productos:   fakeProductos{bitacora: b},
		Ventas:      fakeVentas{bitacora: b},
		Compras:     fakeCompras{bitacora: b},
		Caja:        fakeCaja{bitacora: b},
		Clientes:    fakeClientes{bitacora: b},
		Proveedores: fakeProveedores{bitacora: b},
		Empleados:   fakeEmpleados{bitacora: b},
		Tickets:     fakeTickets{bitacora: b},
	}, b
}
