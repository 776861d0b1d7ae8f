package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type GastoRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=3,max=250"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
}

type MovimientoCajaRequest struct {
	Monto  decimal.Decimal `json:"monto"  validate:"required,gt=0"`
	Motivo string          `json:"motivo" validate:"omitempty,max=250"`
}

type CorteCajaRequest struct {
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
	Observaciones  *string         `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DesvioResponse struct {
	Monto         decimal.Decimal `json:"monto"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	Clasificacion string          `json:"clasificacion"` // normal | advertencia | critico
}

// ResumenCajaResponse is the drawer state since the last cash cut.
type ResumenCajaResponse struct {
	Desde          string          `json:"desde"`
	Hasta          string          `json:"hasta"`
	Fondos         decimal.Decimal `json:"fondos"`
	VentasEfectivo decimal.Decimal `json:"ventas_efectivo"`
	Retiros        decimal.Decimal `json:"retiros"`
	Gastos         decimal.Decimal `json:"gastos"`
	MontoEsperado  decimal.Decimal `json:"monto_esperado"`
}

type CorteCajaResponse struct {
	ID             string              `json:"id"`
	Resumen        ResumenCajaResponse `json:"resumen"`
	MontoDeclarado decimal.Decimal     `json:"monto_declarado"`
	Desvio         DesvioResponse      `json:"desvio"`
	Observaciones  *string             `json:"observaciones"`
}
