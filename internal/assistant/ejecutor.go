package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Solicitud is who asks and where. Ahora carries the requester's location,
// so "hoy" is the requester's calendar day.
type Solicitud struct {
	SucursalID uuid.UUID
	UsuarioID  *uuid.UUID
	Ahora      time.Time
}

// Servicios are the domain services reachable from the catalog.
type Servicios struct {
	Reportes    service.ReporteService
	Productos   service.ProductoService
	Ventas      service.VentaService
	Compras     service.CompraService
	Caja        service.CajaService
	Clientes    service.ClienteService
	Proveedores service.ProveedorService
	Empleados   service.EmpleadoService
	Tickets     service.TicketService
}

// ── Argumentos ───────────────────────────────────────────────────────────────
// Actions that mirror a REST request reuse its DTO; the rest are below.

type argsFecha struct {
	Fecha string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
}

type argsPrediccion struct {
	Dias int `json:"dias" validate:"required,min=1,max=365"`
}

type argsLimite struct {
	Limite int `json:"limite" validate:"omitempty,min=1,max=50"`
}

type argsNombre struct {
	Nombre string `json:"nombre" validate:"required"`
}

type argsPrecio struct {
	Producto string          `json:"producto" validate:"required"`
	Precio   decimal.Decimal `json:"precio"   validate:"required,gt=0"`
}

type argsFolio struct {
	Folio int `json:"folio" validate:"required,min=1"`
}

// decodificar maps tool-call arguments onto T and runs its validate tags.
func decodificar[T any](args map[string]any) (T, error) {
	var v T
	if len(args) > 0 {
		raw, err := json.Marshal(args)
		if err != nil {
			return v, fmt.Errorf("%w: argumentos ilegibles", service.ErrDatosInvalidos)
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return v, fmt.Errorf("%w: argumentos con tipo incorrecto: %v", service.ErrDatosInvalidos, err)
		}
	}
	if err := dto.Validate.Struct(&v); err != nil {
		return v, fmt.Errorf("%w: argumentos incompletos %v", service.ErrDatosInvalidos, dto.CamposInvalidos(err))
	}
	return v, nil
}

func (a argsFecha) resolver(ahora time.Time) time.Time {
	if a.Fecha == "" {
		return ahora
	}
	// Already validated by the datetime tag.
	t, _ := time.ParseInLocation(time.DateOnly, a.Fecha, ahora.Location())
	return t
}

// ── Ejecución ────────────────────────────────────────────────────────────────

// Ejecutar runs the domain operation of call and returns its raw result.
// Argument problems and business rule violations come back as service
// domain errors.
func (s *Servicios) Ejecutar(ctx context.Context, call ActionCall, sol Solicitud) (any, error) {
	suc, usr := sol.SucursalID, sol.UsuarioID

	switch call.Kind {
	case KpisDia, KpisSemana, KpisMes:
		a, err := decodificar[argsFecha](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Reportes.Kpis(ctx, suc, periodoDe(call.Kind), a.resolver(sol.Ahora))

	case PrediccionVentas:
		a, err := decodificar[argsPrediccion](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Reportes.Prediccion(ctx, suc, a.Dias, sol.Ahora)

	case TopProductosUltimoMes:
		a, err := decodificar[argsLimite](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Reportes.TopProductos(ctx, suc, a.Limite, sol.Ahora)

	case TopClientesUltimoMes:
		a, err := decodificar[argsLimite](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Reportes.TopClientes(ctx, suc, a.Limite, sol.Ahora)

	case ProductosBajoStock:
		return s.Productos.BajoStock(ctx, suc)

	case ResumenCaja:
		return s.Caja.Resumen(ctx, suc)

	case RegistrarVenta:
		a, err := decodificar[dto.VentaRapidaRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Ventas.RegistrarRapida(ctx, suc, usr, a)

	case RegistrarCompra:
		a, err := decodificar[dto.CompraRapidaRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Compras.RegistrarRapida(ctx, suc, usr, a)

	case RegistrarGasto:
		a, err := decodificar[dto.GastoRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Caja.RegistrarGasto(ctx, suc, usr, a)

	case RegistrarRetiroCaja, RegistrarFondoCaja:
		a, err := decodificar[dto.MovimientoCajaRequest](call.Args)
		if err != nil {
			return nil, err
		}
		tipo := model.MovimientoFondo
		if call.Kind == RegistrarRetiroCaja {
			tipo = model.MovimientoRetiro
		}
		return s.Caja.RegistrarMovimiento(ctx, suc, usr, tipo, a)

	case RealizarCorteCaja:
		a, err := decodificar[dto.CorteCajaRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Caja.Corte(ctx, suc, usr, a, false)

	case CrearCliente:
		a, err := decodificar[dto.CrearClienteRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Clientes.Crear(ctx, suc, a)

	case ActivarCliente, DesactivarCliente:
		a, err := decodificar[argsNombre](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Clientes.CambiarEstadoPorNombre(ctx, suc, a.Nombre, call.Kind == ActivarCliente)

	case CrearProveedor:
		a, err := decodificar[dto.CrearProveedorRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Proveedores.Crear(ctx, suc, a)

	case ActivarProveedor, DesactivarProveedor:
		a, err := decodificar[argsNombre](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Proveedores.CambiarEstadoPorNombre(ctx, suc, a.Nombre, call.Kind == ActivarProveedor)

	case CrearProducto:
		a, err := decodificar[dto.CrearProductoRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Productos.Crear(ctx, suc, a)

	case ActualizarPrecioProducto:
		a, err := decodificar[argsPrecio](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Productos.ActualizarPrecio(ctx, suc, a.Producto, a.Precio)

	case ActivarProducto, DesactivarProducto:
		a, err := decodificar[argsNombre](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Productos.CambiarEstadoPorNombre(ctx, suc, a.Nombre, call.Kind == ActivarProducto)

	case ActivarEmpleado, DesactivarEmpleado:
		a, err := decodificar[argsNombre](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Empleados.CambiarEstadoPorNombre(ctx, suc, a.Nombre, call.Kind == ActivarEmpleado)

	case CrearTicketSoporte:
		a, err := decodificar[dto.CrearTicketRequest](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Tickets.Crear(ctx, suc, usr, a)

	case CerrarTicketSoporte:
		a, err := decodificar[argsFolio](call.Args)
		if err != nil {
			return nil, err
		}
		return s.Tickets.CambiarEstado(ctx, suc, a.Folio, model.TicketCerrado)
	}

	return nil, fmt.Errorf("%w: acción %q desconocida", service.ErrDatosInvalidos, call.Kind)
}

func periodoDe(kind ActionKind) service.Periodo {
	switch kind {
	case KpisSemana:
		return service.PeriodoSemana
	case KpisMes:
		return service.PeriodoMes
	}
	return service.PeriodoDia
}
