package assistant

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/kpi"

	"github.com/shopspring/decimal"
)

// Formatear renders the result of an action as chat text. Lists come out
// as pipe-delimited tables with a fixed column set per action.
func Formatear(kind ActionKind, data any) string {
	switch kind {
	case KpisDia, KpisSemana, KpisMes:
		if r, ok := data.(*kpi.Resumen); ok {
			return formatearKpis(kind, r)
		}
	case PrediccionVentas:
		if p, ok := data.(*kpi.Prediccion); ok {
			return fmt.Sprintf("Con un promedio diario de %s en los últimos %d días, se estiman %s en ventas para los próximos %d días.",
				pesos(p.PromedioDiario), kpi.DiasBasePrediccion, pesos(p.Prediccion), p.Dias)
		}
	case TopProductosUltimoMes:
		if t, ok := data.(*dto.TopResponse); ok {
			return formatearTop(t, "Producto", "Cantidad", "Nadie ha comprado productos en los últimos 30 días.")
		}
	case TopClientesUltimoMes:
		if t, ok := data.(*dto.TopResponse); ok {
			return formatearTop(t, "Cliente", "Compras", "No hay ventas a clientes en los últimos 30 días.")
		}
	case ProductosBajoStock:
		if ps, ok := data.([]dto.ProductoResponse); ok {
			return formatearBajoStock(ps)
		}
	case ResumenCaja:
		if r, ok := data.(*dto.ResumenCajaResponse); ok {
			return "Caja desde el último corte:\n" + resumenCaja(r)
		}
	case RealizarCorteCaja:
		if c, ok := data.(*dto.CorteCajaResponse); ok {
			return fmt.Sprintf("Corte de caja registrado.\n%s\n- Declarado: %s\n- Desvío: %s (%s%%, %s)",
				resumenCaja(&c.Resumen), pesos(c.MontoDeclarado), pesos(c.Desvio.Monto),
				c.Desvio.Porcentaje.StringFixed(2), c.Desvio.Clasificacion)
		}
	case RegistrarVenta, RegistrarCompra, RegistrarGasto, RegistrarRetiroCaja, RegistrarFondoCaja,
		CrearCliente, ActivarCliente, DesactivarCliente,
		CrearProveedor, ActivarProveedor, DesactivarProveedor,
		CrearProducto, ActualizarPrecioProducto, ActivarProducto, DesactivarProducto,
		ActivarEmpleado, DesactivarEmpleado,
		CrearTicketSoporte, CerrarTicketSoporte:
		if r, ok := data.(*dto.ResultadoAccion); ok {
			return r.Message
		}
	}
	return "Listo."
}

func pesos(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

var nombrePeriodo = map[ActionKind]string{
	KpisDia:    "del día",
	KpisSemana: "de la semana",
	KpisMes:    "del mes",
}

func formatearKpis(kind ActionKind, r *kpi.Resumen) string {
	var b strings.Builder
	desde, hasta := r.Desde.Format(time.DateOnly), r.Hasta.Format(time.DateOnly)
	if desde == hasta {
		fmt.Fprintf(&b, "KPIs %s %s:\n", nombrePeriodo[kind], desde)
	} else {
		fmt.Fprintf(&b, "KPIs %s (%s a %s):\n", nombrePeriodo[kind], desde, hasta)
	}
	fmt.Fprintf(&b, "- Ventas: %s en %d transacciones, ticket promedio %s\n",
		pesos(r.TotalVentas), r.NumeroTransacciones, pesos(r.TicketPromedio))
	fmt.Fprintf(&b, "- Efectivo %s, tarjeta %s, transferencia %s, cheque %s, vale %s, crédito %s\n",
		pesos(r.TotalEfectivo), pesos(r.TotalTarjeta), pesos(r.TotalTransferencia),
		pesos(r.TotalCheque), pesos(r.TotalVale), pesos(r.TotalCredito))
	fmt.Fprintf(&b, "- Artículos vendidos: %d\n", r.ArticulosVendidos)
	fmt.Fprintf(&b, "- Descuentos: %s (%s%%)\n", pesos(r.TotalDescuentos), r.PorcentajeDescuentos.StringFixed(2))
	fmt.Fprintf(&b, "- Devoluciones: %d por %s (%s%%)\n", r.NumeroDevoluciones, pesos(r.TotalDevoluciones), r.PorcentajeDevolucion.StringFixed(2))
	fmt.Fprintf(&b, "- Gastos %s, compras %s, balance %s\n", pesos(r.TotalGastos), pesos(r.TotalCompras), pesos(r.Balance))
	fmt.Fprintf(&b, "- Meta %s, avance %s%%", pesos(r.Meta), r.AvanceMeta.StringFixed(2))
	return b.String()
}

func formatearTop(t *dto.TopResponse, entidad, cantidad, vacio string) string {
	if len(t.Items) == 0 {
		return vacio
	}
	filas := make([][]string, len(t.Items))
	for i, it := range t.Items {
		filas[i] = []string{strconv.Itoa(i + 1), it.Nombre, strconv.FormatInt(it.Cantidad, 10), pesos(it.Monto)}
	}
	return tabla([]string{"#", entidad, cantidad, "Monto"}, filas)
}

func formatearBajoStock(ps []dto.ProductoResponse) string {
	if len(ps) == 0 {
		return "Ningún producto está por debajo de su existencia mínima."
	}
	filas := make([][]string, len(ps))
	for i, p := range ps {
		filas[i] = []string{p.Nombre, strconv.Itoa(p.Stock), strconv.Itoa(p.StockMinimo)}
	}
	return tabla([]string{"Producto", "Existencia", "Mínimo"}, filas)
}

func resumenCaja(r *dto.ResumenCajaResponse) string {
	return fmt.Sprintf("- Fondos: %s\n- Ventas en efectivo: %s\n- Retiros: %s\n- Gastos: %s\n- Esperado en caja: %s",
		pesos(r.Fondos), pesos(r.VentasEfectivo), pesos(r.Retiros), pesos(r.Gastos), pesos(r.MontoEsperado))
}

// tabla renders a pipe-delimited text table.
func tabla(columnas []string, filas [][]string) string {
	var b strings.Builder
	escribirFila(&b, columnas)
	sep := make([]string, len(columnas))
	for i := range sep {
		sep[i] = "---"
	}
	escribirFila(&b, sep)
	for _, f := range filas {
		escribirFila(&b, f)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func escribirFila(b *strings.Builder, celdas []string) {
	b.WriteString("|")
	for _, c := range celdas {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", "/"))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// tablaFilas renders query rows with their columns in alphabetical order.
// It backs the fallback answer when the summary call fails.
func tablaFilas(filas []map[string]any) string {
	if len(filas) == 0 {
		return "La consulta no devolvió resultados."
	}
	columnas := make([]string, 0, len(filas[0]))
	for k := range filas[0] {
		columnas = append(columnas, k)
	}
	sort.Strings(columnas)

	celdas := make([][]string, len(filas))
	for i, f := range filas {
		celdas[i] = make([]string, len(columnas))
		for j, c := range columnas {
			celdas[i][j] = celda(f[c])
		}
	}
	return tabla(columnas, celdas)
}

func celda(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format("2006-01-02 15:04")
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
