package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const precioCacheTTL = 4 * time.Hour

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, sucursalID uuid.UUID, req dto.CrearProductoRequest) (*dto.ResultadoAccion, error)
	Listar(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]dto.ProductoResponse, error)
	BajoStock(ctx context.Context, sucursalID uuid.UUID) ([]dto.ProductoResponse, error)
	ConsultarPrecio(ctx context.Context, sucursalID uuid.UUID, codigo string) (*dto.ConsultaPrecioResponse, error)
	Actualizar(ctx context.Context, sucursalID, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	ActualizarPrecio(ctx context.Context, sucursalID uuid.UUID, nombre string, precio decimal.Decimal) (*dto.ResultadoAccion, error)
	CambiarEstado(ctx context.Context, sucursalID, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error)
	CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error)
}

type productoService struct {
	repo  repository.ProductoRepository
	cache Cache
}

func NewProductoService(repo repository.ProductoRepository, cache Cache) ProductoService {
	return &productoService{repo: repo, cache: cache}
}

func productoNombre(p model.Producto) string { return p.Nombre }

func precioCacheKey(sucursalID uuid.UUID, codigo string) string {
	return "precio:" + sucursalID.String() + ":" + codigo
}

func (s *productoService) Crear(ctx context.Context, sucursalID uuid.UUID, req dto.CrearProductoRequest) (*dto.ResultadoAccion, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, invalido("el nombre del producto es obligatorio")
	}
	if !req.Precio.IsPositive() {
		return nil, invalido("el precio debe ser mayor a cero")
	}
	if req.Costo.IsNegative() || req.Stock < 0 || req.StockMinimo < 0 {
		return nil, invalido("costo y existencias no pueden ser negativos")
	}
	proveedorID, err := parseOptionalUUID(req.ProveedorID, "proveedor_id")
	if err != nil {
		return nil, err
	}

	existentes, err := s.repo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	if existeNombre(existentes, productoNombre, nombre) {
		return nil, fmt.Errorf("%w: el producto %q", ErrDuplicado, nombre)
	}
	codigo := trimPtr(req.CodigoBarras)
	if codigo != nil {
		for _, p := range existentes {
			if p.CodigoBarras != nil && *p.CodigoBarras == *codigo {
				return nil, fmt.Errorf("%w: el código de barras %s pertenece a %s", ErrDuplicado, *codigo, p.Nombre)
			}
		}
	}

	p := &model.Producto{
		SucursalID:   sucursalID,
		CodigoBarras: codigo,
		Nombre:       nombre,
		Descripcion:  trimPtr(req.Descripcion),
		Precio:       req.Precio.Round(2),
		Costo:        req.Costo.Round(2),
		Stock:        req.Stock,
		StockMinimo:  req.StockMinimo,
		ProveedorID:  proveedorID,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return dto.Ok(fmt.Sprintf("Producto %s registrado con precio $%s.", p.Nombre, p.Precio.StringFixed(2)), productoToResponse(p)), nil
}

func (s *productoService) Listar(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListBySucursal(ctx, sucursalID, incluirInactivos)
	if err != nil {
		return nil, err
	}
	return productosToResponse(productos), nil
}

func (s *productoService) BajoStock(ctx context.Context, sucursalID uuid.UUID) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListBajoStock(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	return productosToResponse(productos), nil
}

// ConsultarPrecio serves the price check by barcode through the cache.
func (s *productoService) ConsultarPrecio(ctx context.Context, sucursalID uuid.UUID, codigo string) (*dto.ConsultaPrecioResponse, error) {
	key := precioCacheKey(sucursalID, codigo)
	var resp dto.ConsultaPrecioResponse
	if s.cache != nil && s.cache.GetJSON(ctx, key, &resp) {
		return &resp, nil
	}

	p, err := s.repo.FindByBarcode(ctx, sucursalID, codigo)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	resp = dto.ConsultaPrecioResponse{Nombre: p.Nombre, Precio: p.Precio, Stock: p.Stock}
	if s.cache != nil {
		s.cache.SetJSON(ctx, key, resp, precioCacheTTL)
	}
	return &resp, nil
}

func (s *productoService) Actualizar(ctx context.Context, sucursalID, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.buscar(ctx, sucursalID, id)
	if err != nil {
		return nil, err
	}
	codigoAnterior := p.CodigoBarras
	if req.Nombre != nil && strings.TrimSpace(*req.Nombre) != "" {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.CodigoBarras != nil {
		p.CodigoBarras = trimPtr(req.CodigoBarras)
	}
	if req.Descripcion != nil {
		p.Descripcion = trimPtr(req.Descripcion)
	}
	if req.Precio != nil {
		if !req.Precio.IsPositive() {
			return nil, invalido("el precio debe ser mayor a cero")
		}
		p.Precio = req.Precio.Round(2)
	}
	if req.Costo != nil {
		p.Costo = req.Costo.Round(2)
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidar(ctx, p, codigoAnterior)
	return productoToResponse(p), nil
}

func (s *productoService) ActualizarPrecio(ctx context.Context, sucursalID uuid.UUID, nombre string, precio decimal.Decimal) (*dto.ResultadoAccion, error) {
	if !precio.IsPositive() {
		return nil, invalido("el precio debe ser mayor a cero")
	}
	productos, err := s.repo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	p, err := resolver(productos, productoNombre, nombre, "producto")
	if err != nil {
		return nil, err
	}
	anterior := p.Precio
	p.Precio = precio.Round(2)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidar(ctx, p, nil)
	msg := fmt.Sprintf("Precio de %s actualizado de $%s a $%s.", p.Nombre, anterior.StringFixed(2), p.Precio.StringFixed(2))
	return dto.Ok(msg, productoToResponse(p)), nil
}

func (s *productoService) CambiarEstado(ctx context.Context, sucursalID, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error) {
	p, err := s.buscar(ctx, sucursalID, id)
	if err != nil {
		return nil, err
	}
	return s.aplicarEstado(ctx, p, activo)
}

func (s *productoService) CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	productos, err := s.repo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	p, err := resolver(productos, productoNombre, nombre, "producto")
	if err != nil {
		return nil, err
	}
	return s.aplicarEstado(ctx, p, activo)
}

func (s *productoService) aplicarEstado(ctx context.Context, p *model.Producto, activo bool) (*dto.ResultadoAccion, error) {
	if p.Activo == activo {
		return dto.Ok(fmt.Sprintf("El producto %s ya estaba %s.", p.Nombre, estadoTexto(activo)), productoToResponse(p)), nil
	}
	if err := s.repo.SetActivo(ctx, p.ID, activo); err != nil {
		return nil, err
	}
	p.Activo = activo
	s.invalidar(ctx, p, nil)
	return dto.Ok(fmt.Sprintf("Producto %s marcado como %s.", p.Nombre, estadoTexto(activo)), productoToResponse(p)), nil
}

func (s *productoService) buscar(ctx context.Context, sucursalID, id uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	if p.SucursalID != sucursalID {
		return nil, fmt.Errorf("%w: producto", ErrNoEncontrado)
	}
	return p, nil
}

// invalidar drops the cached price check entries of p.
func (s *productoService) invalidar(ctx context.Context, p *model.Producto, codigoAnterior *string) {
	if s.cache == nil {
		return
	}
	var keys []string
	if p.CodigoBarras != nil {
		keys = append(keys, precioCacheKey(p.SucursalID, *p.CodigoBarras))
	}
	if codigoAnterior != nil {
		keys = append(keys, precioCacheKey(p.SucursalID, *codigoAnterior))
	}
	if len(keys) > 0 {
		s.cache.Delete(ctx, keys...)
	}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		Nombre:       p.Nombre,
		CodigoBarras: p.CodigoBarras,
		Descripcion:  p.Descripcion,
		Precio:       p.Precio,
		Costo:        p.Costo,
		Stock:        p.Stock,
		StockMinimo:  p.StockMinimo,
		ProveedorID:  uuidPtrString(p.ProveedorID),
		Activo:       p.Activo,
	}
}

func productosToResponse(productos []model.Producto) []dto.ProductoResponse {
	resp := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		resp[i] = *productoToResponse(&productos[i])
	}
	return resp
}
