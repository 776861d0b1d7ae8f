package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=120"`
	CodigoBarras *string         `json:"codigo_barras" validate:"omitempty,min=8,max=18"`
	Descripcion  *string         `json:"descripcion"`
	Precio       decimal.Decimal `json:"precio"        validate:"required,gt=0"`
	Costo        decimal.Decimal `json:"costo"         validate:"min=0"`
	Stock        int             `json:"stock"         validate:"min=0"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
	ProveedorID  *string         `json:"proveedor_id"  validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=2,max=120"`
	CodigoBarras *string          `json:"codigo_barras" validate:"omitempty,min=8,max=18"`
	Descripcion  *string          `json:"descripcion"`
	Precio       *decimal.Decimal `json:"precio"        validate:"omitempty,gt=0"`
	Costo        *decimal.Decimal `json:"costo"         validate:"omitempty,min=0"`
	StockMinimo  *int             `json:"stock_minimo"  validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	CodigoBarras *string         `json:"codigo_barras"`
	Descripcion  *string         `json:"descripcion"`
	Precio       decimal.Decimal `json:"precio"`
	Costo        decimal.Decimal `json:"costo"`
	Stock        int             `json:"stock"`
	StockMinimo  int             `json:"stock_minimo"`
	ProveedorID  *string         `json:"proveedor_id"`
	Activo       bool            `json:"activo"`
}

// ConsultaPrecioResponse is the public price check payload.
type ConsultaPrecioResponse struct {
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
	Stock  int             `json:"stock"`
}
