package service

import (
	"context"
	"fmt"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/kpi"
	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	RegistrarRapida(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.VentaRapidaRequest) (*dto.ResultadoAccion, error)
	Devolver(ctx context.Context, sucursalID, id uuid.UUID) (*dto.ResultadoAccion, error)
	ListarDia(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) ([]dto.VentaResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	cache        Cache
	now          func() time.Time
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	cache Cache,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		cache:        cache,
		now:          time.Now,
	}
}

// lineaVenta is a product already resolved and checked against the branch.
type lineaVenta struct {
	producto  *model.Producto
	cantidad  int
	descuento decimal.Decimal
}

// ── Registrar ────────────────────────────────────────────────────────────────
// Pre-flight (outside TX): resolve products, price lines, check payments.
// TX: next ticket number, venta + detalles, stock decrement guarded in SQL.

func (s *ventaService) Registrar(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	clienteID, err := parseOptionalUUID(req.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}
	if clienteID != nil {
		c, err := s.clienteRepo.FindByID(ctx, *clienteID)
		if err != nil || c.SucursalID != sucursalID {
			return nil, fmt.Errorf("%w: cliente", ErrNoEncontrado)
		}
		if !c.Activo {
			return nil, fmt.Errorf("%w: el cliente %s está inactivo", ErrInactivo, c.Nombre)
		}
	}

	lineas := make([]lineaVenta, 0, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, invalido("producto_id inválido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil || p.SucursalID != sucursalID {
			return nil, fmt.Errorf("%w: producto %s", ErrNoEncontrado, item.ProductoID)
		}
		lineas = append(lineas, lineaVenta{producto: p, cantidad: item.Cantidad, descuento: item.Descuento})
	}

	venta, cambio, err := s.registrar(ctx, sucursalID, usuarioID, clienteID, lineas, req.Pagos)
	if err != nil {
		return nil, err
	}
	resp := ventaToResponse(venta)
	resp.Cambio = cambio
	return resp, nil
}

// RegistrarRapida sells cantidad units of one product looked up by name and
// charges the exact total to a single payment method (efectivo by default).
func (s *ventaService) RegistrarRapida(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.VentaRapidaRequest) (*dto.ResultadoAccion, error) {
	if req.Cantidad <= 0 {
		return nil, invalido("la cantidad debe ser mayor a cero")
	}
	metodo := req.MetodoPago
	if metodo == "" {
		metodo = model.MetodoEfectivo
	}

	productos, err := s.productoRepo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	p, err := resolver(productos, productoNombre, req.Producto, "producto")
	if err != nil {
		return nil, err
	}

	var clienteID *uuid.UUID
	clienteNombreVenta := kpi.PublicoEnGeneral
	if req.Cliente != "" {
		clientes, err := s.clienteRepo.ListBySucursal(ctx, sucursalID, true)
		if err != nil {
			return nil, err
		}
		c, err := resolver(clientes, clienteNombre, req.Cliente, "cliente")
		if err != nil {
			return nil, err
		}
		if !c.Activo {
			return nil, fmt.Errorf("%w: el cliente %s está inactivo", ErrInactivo, c.Nombre)
		}
		clienteID = &c.ID
		clienteNombreVenta = c.Nombre
	}

	linea := lineaVenta{producto: p, cantidad: req.Cantidad, descuento: req.Descuento}
	total := p.Precio.Mul(decimal.NewFromInt(int64(req.Cantidad))).Sub(req.Descuento)
	pagos := []dto.PagoRequest{{Metodo: metodo, Monto: total}}

	venta, _, err := s.registrar(ctx, sucursalID, usuarioID, clienteID, []lineaVenta{linea}, pagos)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Venta #%d registrada: %d x %s por $%s (%s) a %s.",
		venta.NumeroTicket, req.Cantidad, p.Nombre, venta.Total.StringFixed(2), metodo, clienteNombreVenta)
	return dto.Ok(msg, ventaToResponse(venta)), nil
}

func (s *ventaService) registrar(
	ctx context.Context,
	sucursalID uuid.UUID,
	usuarioID, clienteID *uuid.UUID,
	lineas []lineaVenta,
	pagos []dto.PagoRequest,
) (*model.Venta, decimal.Decimal, error) {
	if len(lineas) == 0 {
		return nil, decimal.Zero, invalido("la venta no tiene artículos")
	}

	venta := model.Venta{
		SucursalID: sucursalID,
		UsuarioID:  usuarioID,
		ClienteID:  clienteID,
		Fecha:      s.now(),
		Estado:     model.EstadoVentaCompletada,
	}
	for _, l := range lineas {
		p := l.producto
		if !p.Activo {
			return nil, decimal.Zero, fmt.Errorf("%w: el producto %s está inactivo y no puede venderse", ErrInactivo, p.Nombre)
		}
		if l.cantidad <= 0 {
			return nil, decimal.Zero, invalido("la cantidad de %s debe ser mayor a cero", p.Nombre)
		}
		if p.Stock < l.cantidad {
			return nil, decimal.Zero, fmt.Errorf("%w: %s tiene %d en existencia", ErrStockInsuficiente, p.Nombre, p.Stock)
		}
		bruto := p.Precio.Mul(decimal.NewFromInt(int64(l.cantidad)))
		if l.descuento.IsNegative() || l.descuento.GreaterThan(bruto) {
			return nil, decimal.Zero, invalido("descuento inválido para %s", p.Nombre)
		}
		venta.Items = append(venta.Items, model.VentaDetalle{
			ProductoID:     p.ID,
			Cantidad:       l.cantidad,
			PrecioUnitario: p.Precio,
			Descuento:      l.descuento,
			Subtotal:       bruto.Sub(l.descuento),
		})
		venta.NumeroArticulos += l.cantidad
		venta.Subtotal = venta.Subtotal.Add(bruto)
		venta.Descuento = venta.Descuento.Add(l.descuento)
	}
	venta.Total = venta.Subtotal.Sub(venta.Descuento)

	totalPagos := decimal.Zero
	for _, pago := range pagos {
		if !pago.Monto.IsPositive() {
			return nil, decimal.Zero, invalido("el monto de cada pago debe ser mayor a cero")
		}
		if !venta.AsignarPago(pago.Metodo, pago.Monto) {
			return nil, decimal.Zero, invalido("método de pago %q no soportado", pago.Metodo)
		}
		totalPagos = totalPagos.Add(pago.Monto)
	}
	if totalPagos.LessThan(venta.Total) {
		return nil, decimal.Zero, invalido("el monto total de pagos es insuficiente")
	}
	// Change is only given in cash, so the per-method columns add up to Total.
	cambio := totalPagos.Sub(venta.Total)
	if cambio.GreaterThan(venta.Efectivo) {
		return nil, decimal.Zero, invalido("el cambio solo puede entregarse en efectivo")
	}
	venta.Efectivo = venta.Efectivo.Sub(cambio)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextTicketNumber(ctx, tx, sucursalID)
		if err != nil {
			return err
		}
		venta.NumeroTicket = numero
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}
		for _, l := range lineas {
			if err := s.productoRepo.UpdateStockTx(tx, l.producto.ID, -l.cantidad); err != nil {
				return fmt.Errorf("%w: %s", err, l.producto.Nombre)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, decimal.Zero, txErr
	}
	invalidarKpis(ctx, s.cache, sucursalID)
	// Attached after the insert so Create never touches productos.
	for i := range venta.Items {
		venta.Items[i].Producto = lineas[i].producto
	}
	return &venta, cambio, nil
}

// ── Devolver ─────────────────────────────────────────────────────────────────

func (s *ventaService) Devolver(ctx context.Context, sucursalID, id uuid.UUID) (*dto.ResultadoAccion, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "venta")
	}
	if venta.SucursalID != sucursalID {
		return nil, fmt.Errorf("%w: venta", ErrNoEncontrado)
	}
	if venta.Estado != model.EstadoVentaCompletada {
		return nil, invalido("la venta #%d está %s", venta.NumeroTicket, venta.Estado)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range venta.Items {
			if err := s.productoRepo.UpdateStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
		}
		return s.repo.UpdateEstadoTx(tx, venta.ID, model.EstadoVentaDevuelta)
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidarKpis(ctx, s.cache, sucursalID)
	venta.Estado = model.EstadoVentaDevuelta
	msg := fmt.Sprintf("Venta #%d devuelta por $%s; el inventario fue repuesto.", venta.NumeroTicket, venta.Total.StringFixed(2))
	return dto.Ok(msg, ventaToResponse(venta)), nil
}

func (s *ventaService) ListarDia(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) ([]dto.VentaResponse, error) {
	v := kpi.Dia(fecha)
	ventas, err := s.repo.ListEnVentana(ctx, sucursalID, v.Desde, v.Hasta)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VentaResponse, len(ventas))
	for i := range ventas {
		resp[i] = *ventaToResponse(&ventas[i])
	}
	return resp, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:              v.ID.String(),
		NumeroTicket:    v.NumeroTicket,
		Fecha:           formatFecha(v.Fecha),
		ClienteID:       uuidPtrString(v.ClienteID),
		NumeroArticulos: v.NumeroArticulos,
		Subtotal:        v.Subtotal,
		Descuento:       v.Descuento,
		Total:           v.Total,
		Pagos:           make(map[string]string),
		Estado:          v.Estado,
		Items:           make([]dto.ItemVentaResponse, 0, len(v.Items)),
	}
	for metodo, monto := range map[string]decimal.Decimal{
		model.MetodoEfectivo:      v.Efectivo,
		model.MetodoTarjeta:       v.Tarjeta,
		model.MetodoTransferencia: v.Transferencia,
		model.MetodoCheque:        v.Cheque,
		model.MetodoVale:          v.Vale,
		model.MetodoCredito:       v.Credito,
	} {
		if !monto.IsZero() {
			resp.Pagos[metodo] = monto.StringFixed(2)
		}
	}
	for _, it := range v.Items {
		nombre := kpi.ProductoDesconocido
		if it.Producto != nil {
			nombre = it.Producto.Nombre
		}
		resp.Items = append(resp.Items, dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Descuento:      it.Descuento,
			Subtotal:       it.Subtotal,
		})
	}
	return resp
}
