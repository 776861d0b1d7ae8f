package service

import (
	"context"
	"fmt"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompraService registers merchandise purchases. A purchase raises stock and
// updates the product's last cost.
type CompraService interface {
	Registrar(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error)
	RegistrarRapida(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.CompraRapidaRequest) (*dto.ResultadoAccion, error)
}

type compraService struct {
	repo          repository.CompraRepository
	proveedorRepo repository.ProveedorRepository
	productoRepo  repository.ProductoRepository
	cache         Cache
	now           func() time.Time
}

func NewCompraService(
	repo repository.CompraRepository,
	proveedorRepo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
	cache Cache,
) CompraService {
	return &compraService{repo: repo, proveedorRepo: proveedorRepo, productoRepo: productoRepo, cache: cache, now: time.Now}
}

type lineaCompra struct {
	producto *model.Producto
	cantidad int
	costo    decimal.Decimal
}

func (s *compraService) Registrar(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error) {
	provID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, invalido("proveedor_id inválido")
	}
	prov, err := s.proveedorRepo.FindByID(ctx, provID)
	if err != nil || prov.SucursalID != sucursalID {
		return nil, fmt.Errorf("%w: proveedor", ErrNoEncontrado)
	}

	lineas := make([]lineaCompra, 0, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, invalido("producto_id inválido")
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil || p.SucursalID != sucursalID {
			return nil, fmt.Errorf("%w: producto %s", ErrNoEncontrado, item.ProductoID)
		}
		lineas = append(lineas, lineaCompra{producto: p, cantidad: item.Cantidad, costo: item.CostoUnitario})
	}

	compra, err := s.registrar(ctx, sucursalID, usuarioID, prov, lineas)
	if err != nil {
		return nil, err
	}
	return compraToResponse(compra, prov), nil
}

func (s *compraService) RegistrarRapida(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.CompraRapidaRequest) (*dto.ResultadoAccion, error) {
	proveedores, err := s.proveedorRepo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	prov, err := resolver(proveedores, proveedorNombre, req.Proveedor, "proveedor")
	if err != nil {
		return nil, err
	}
	productos, err := s.productoRepo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	p, err := resolver(productos, productoNombre, req.Producto, "producto")
	if err != nil {
		return nil, err
	}

	compra, err := s.registrar(ctx, sucursalID, usuarioID, prov, []lineaCompra{{producto: p, cantidad: req.Cantidad, costo: req.CostoUnitario}})
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Compra registrada a %s: %d x %s por $%s. Existencia actual: %d.",
		prov.Nombre, req.Cantidad, p.Nombre, compra.Total.StringFixed(2), p.Stock+req.Cantidad)
	return dto.Ok(msg, compraToResponse(compra, prov)), nil
}

func (s *compraService) registrar(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, prov *model.Proveedor, lineas []lineaCompra) (*model.Compra, error) {
	if !prov.Activo {
		return nil, fmt.Errorf("%w: el proveedor %s está inactivo", ErrInactivo, prov.Nombre)
	}
	if len(lineas) == 0 {
		return nil, invalido("la compra no tiene artículos")
	}

	compra := model.Compra{
		SucursalID:  sucursalID,
		ProveedorID: prov.ID,
		UsuarioID:   usuarioID,
		Fecha:       s.now(),
	}
	for _, l := range lineas {
		if l.cantidad <= 0 {
			return nil, invalido("la cantidad de %s debe ser mayor a cero", l.producto.Nombre)
		}
		if !l.costo.IsPositive() {
			return nil, invalido("el costo de %s debe ser mayor a cero", l.producto.Nombre)
		}
		sub := l.costo.Mul(decimal.NewFromInt(int64(l.cantidad)))
		compra.Items = append(compra.Items, model.CompraDetalle{
			ProductoID:    l.producto.ID,
			Cantidad:      l.cantidad,
			CostoUnitario: l.costo,
			Subtotal:      sub,
		})
		compra.Total = compra.Total.Add(sub)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &compra); err != nil {
			return err
		}
		for _, l := range lineas {
			if err := s.productoRepo.UpdateStockTx(tx, l.producto.ID, l.cantidad); err != nil {
				return err
			}
			if err := s.productoRepo.UpdateCostoTx(tx, l.producto.ID, l.costo); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidarKpis(ctx, s.cache, sucursalID)
	return &compra, nil
}

func compraToResponse(c *model.Compra, prov *model.Proveedor) *dto.CompraResponse {
	articulos := 0
	for _, it := range c.Items {
		articulos += it.Cantidad
	}
	return &dto.CompraResponse{
		ID:        c.ID.String(),
		Proveedor: prov.Nombre,
		Fecha:     formatFecha(c.Fecha),
		Total:     c.Total,
		Articulos: articulos,
	}
}
