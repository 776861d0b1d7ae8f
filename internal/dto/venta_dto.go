package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   int             `json:"cantidad"    validate:"required,min=1"`
	Descuento  decimal.Decimal `json:"descuento"   validate:"min=0"`
}

type PagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo tarjeta transferencia cheque vale credito"`
	Monto  decimal.Decimal `json:"monto"  validate:"required,gt=0"`
}

type RegistrarVentaRequest struct {
	ClienteID *string            `json:"cliente_id" validate:"omitempty,uuid"`
	Items     []ItemVentaRequest `json:"items"      validate:"required,min=1,dive"`
	Pagos     []PagoRequest      `json:"pagos"      validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID              string              `json:"id"`
	NumeroTicket    int                 `json:"numero_ticket"`
	Fecha           string              `json:"fecha"`
	ClienteID       *string             `json:"cliente_id"`
	NumeroArticulos int                 `json:"numero_articulos"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Descuento       decimal.Decimal     `json:"descuento"`
	Total           decimal.Decimal     `json:"total"`
	Pagos           map[string]string   `json:"pagos"`
	Cambio          decimal.Decimal     `json:"cambio"`
	Estado          string              `json:"estado"`
	Items           []ItemVentaResponse `json:"items"`
}

// VentaRapidaRequest is a single-product sale described by names, as the
// assistant receives it.
type VentaRapidaRequest struct {
	Producto   string          `json:"producto"    validate:"required"`
	Cantidad   int             `json:"cantidad"    validate:"required,min=1"`
	MetodoPago string          `json:"metodo_pago" validate:"omitempty,oneof=efectivo tarjeta transferencia cheque vale credito"`
	Cliente    string          `json:"cliente"`
	Descuento  decimal.Decimal `json:"descuento"   validate:"min=0"`
}
