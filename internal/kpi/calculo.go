package kpi

import (
	"crovpos/internal/model"

	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// Resumen is the KPI summary of one branch over one window.
type Resumen struct {
	Ventana

	TotalVentas        decimal.Decimal `json:"totalVentas"`
	TotalEfectivo      decimal.Decimal `json:"totalEfectivo"`
	TotalTarjeta       decimal.Decimal `json:"totalTarjeta"`
	TotalTransferencia decimal.Decimal `json:"totalTransferencia"`
	TotalCheque        decimal.Decimal `json:"totalCheque"`
	TotalVale          decimal.Decimal `json:"totalVale"`
	TotalCredito       decimal.Decimal `json:"totalCredito"`

	NumeroTransacciones int             `json:"numeroTransacciones"`
	ArticulosVendidos   int             `json:"articulosVendidos"`
	TicketPromedio      decimal.Decimal `json:"ticketPromedio"`

	TotalDescuentos      decimal.Decimal `json:"totalDescuentos"`
	PorcentajeDescuentos decimal.Decimal `json:"porcentajeDescuentos"`
	NumeroDevoluciones   int             `json:"numeroDevoluciones"`
	TotalDevoluciones    decimal.Decimal `json:"totalDevoluciones"`
	PorcentajeDevolucion decimal.Decimal `json:"porcentajeDevoluciones"`

	TotalGastos  decimal.Decimal `json:"totalGastos"`
	TotalCompras decimal.Decimal `json:"totalCompras"`
	Balance      decimal.Decimal `json:"balance"`

	Meta       decimal.Decimal `json:"meta"`
	AvanceMeta decimal.Decimal `json:"avanceMeta"`
}

// Calcular aggregates the sales that fall inside v. Completed sales feed the
// totals; returned sales feed the return figures only; cancelled sales are
// ignored. Expenses, purchases and the goal are filled by the caller through
// ConGastos and ConMeta.
func Calcular(ventas []model.Venta, v Ventana) Resumen {
	r := Resumen{Ventana: v}
	for i := range ventas {
		venta := &ventas[i]
		if !v.Contiene(venta.Fecha) {
			continue
		}
		switch venta.Estado {
		case model.EstadoVentaCompletada:
			r.NumeroTransacciones++
			r.ArticulosVendidos += venta.NumeroArticulos
			r.TotalVentas = r.TotalVentas.Add(venta.Total)
			r.TotalEfectivo = r.TotalEfectivo.Add(venta.Efectivo)
			r.TotalTarjeta = r.TotalTarjeta.Add(venta.Tarjeta)
			r.TotalTransferencia = r.TotalTransferencia.Add(venta.Transferencia)
			r.TotalCheque = r.TotalCheque.Add(venta.Cheque)
			r.TotalVale = r.TotalVale.Add(venta.Vale)
			r.TotalCredito = r.TotalCredito.Add(venta.Credito)
			r.TotalDescuentos = r.TotalDescuentos.Add(venta.Descuento)
		case model.EstadoVentaDevuelta:
			r.NumeroDevoluciones++
			r.TotalDevoluciones = r.TotalDevoluciones.Add(venta.Total)
		}
	}

	r.TicketPromedio = TicketPromedio(r.TotalVentas, r.NumeroTransacciones)
	// Gross is everything rung up in the window, returned sales included.
	bruto := r.TotalVentas.Add(r.TotalDevoluciones)
	r.PorcentajeDescuentos = Porcentaje(r.TotalDescuentos, bruto)
	r.PorcentajeDevolucion = Porcentaje(r.TotalDevoluciones, bruto)
	r.Balance = r.TotalVentas
	return r
}

// ConGastos records expenses and purchases and recomputes the balance.
func (r Resumen) ConGastos(gastos, compras decimal.Decimal) Resumen {
	r.TotalGastos = gastos
	r.TotalCompras = compras
	r.Balance = r.TotalVentas.Sub(gastos).Sub(compras)
	return r
}

// ConMeta sets the goal for the window from the historical best day.
func (r Resumen) ConMeta(maxDiario decimal.Decimal) Resumen {
	r.Meta = maxDiario.Mul(decimal.NewFromInt(int64(r.Ventana.Dias())))
	r.AvanceMeta = Porcentaje(r.TotalVentas, r.Meta)
	return r
}

// TicketPromedio is total / transacciones, or zero when there are none.
func TicketPromedio(total decimal.Decimal, transacciones int) decimal.Decimal {
	if transacciones <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(transacciones))).Round(2)
}

// Porcentaje returns parte / base * 100 rounded to two places, zero when base is zero.
func Porcentaje(parte, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return parte.Div(base).Mul(cien).Round(2)
}

// TotalDia is the sales total of one calendar day.
type TotalDia struct {
	Dia   string          `json:"dia"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
}

// MaximoDiario returns the best daily total, zero for an empty history.
func MaximoDiario(totales []TotalDia) decimal.Decimal {
	mejor := decimal.Zero
	for _, t := range totales {
		if t.Total.GreaterThan(mejor) {
			mejor = t.Total
		}
	}
	return mejor
}
