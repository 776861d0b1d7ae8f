package dto

import "github.com/shopspring/decimal"

type ItemCompraRequest struct {
	ProductoID    string          `json:"producto_id"    validate:"required,uuid"`
	Cantidad      int             `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"required,gt=0"`
}

type RegistrarCompraRequest struct {
	ProveedorID string              `json:"proveedor_id" validate:"required,uuid"`
	Items       []ItemCompraRequest `json:"items"        validate:"required,min=1,dive"`
}

type CompraResponse struct {
	ID        string          `json:"id"`
	Proveedor string          `json:"proveedor"`
	Fecha     string          `json:"fecha"`
	Total     decimal.Decimal `json:"total"`
	Articulos int             `json:"articulos"`
}

// CompraRapidaRequest is a single-product purchase described by names.
type CompraRapidaRequest struct {
	Proveedor     string          `json:"proveedor"      validate:"required"`
	Producto      string          `json:"producto"       validate:"required"`
	Cantidad      int             `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"required,gt=0"`
}
