package infra

// pdf.go renders the scheduled KPI report with go-pdf/fpdf: a header with
// the branch and window, the sales block, the cash block and the goal.
// The file is written to storagePath/reporte_{sucursal}_{desde}_{hasta}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crovpos/internal/kpi"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReporteKPI is the content of one report.
type ReporteKPI struct {
	Titulo   string // "Reporte diario", "Reporte mensual"
	Sucursal string
	Resumen  kpi.Resumen
	Top      []kpi.TopItem
	Generado time.Time
}

// NombreArchivo is the file name GenerateReportePDF writes for r.
func (r ReporteKPI) NombreArchivo(sucursalID string) string {
	return fmt.Sprintf("reporte_%s_%s_%s.pdf", sucursalID,
		r.Resumen.Desde.Format("20060102"), r.Resumen.Hasta.Format("20060102"))
}

// GenerateReportePDF writes the report and returns the file path.
func GenerateReportePDF(r ReporteKPI, sucursalID, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, r.NombreArchivo(sucursalID))

	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(r.Titulo+" - "+r.Sucursal), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	periodo := r.Resumen.Desde.Format("02/01/2006")
	if hasta := r.Resumen.Hasta.Format("02/01/2006"); hasta != periodo {
		periodo += " al " + hasta
	}
	pdf.CellFormat(contentW, 5, tr("Periodo: "+periodo), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Generado: "+r.Generado.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	res := r.Resumen
	seccion(pdf, tr, contentW, "Ventas", [][2]string{
		{"Total de ventas", pesos(res.TotalVentas)},
		{"Transacciones", fmt.Sprint(res.NumeroTransacciones)},
		{"Artículos vendidos", fmt.Sprint(res.ArticulosVendidos)},
		{"Ticket promedio", pesos(res.TicketPromedio)},
		{"Efectivo", pesos(res.TotalEfectivo)},
		{"Tarjeta", pesos(res.TotalTarjeta)},
		{"Transferencia", pesos(res.TotalTransferencia)},
		{"Cheque", pesos(res.TotalCheque)},
		{"Vale", pesos(res.TotalVale)},
		{"Crédito", pesos(res.TotalCredito)},
		{"Descuentos", pesos(res.TotalDescuentos) + " (" + res.PorcentajeDescuentos.StringFixed(2) + "%)"},
		{"Devoluciones", fmt.Sprintf("%d, %s (%s%%)", res.NumeroDevoluciones, pesos(res.TotalDevoluciones), res.PorcentajeDevolucion.StringFixed(2))},
	})
	seccion(pdf, tr, contentW, "Egresos y balance", [][2]string{
		{"Gastos", pesos(res.TotalGastos)},
		{"Compras", pesos(res.TotalCompras)},
		{"Balance", pesos(res.Balance)},
	})
	seccion(pdf, tr, contentW, "Meta", [][2]string{
		{"Meta del periodo", pesos(res.Meta)},
		{"Avance", res.AvanceMeta.StringFixed(2) + "%"},
	})

	if len(r.Top) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, tr("Productos más vendidos"), "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for i, t := range r.Top {
			pdf.CellFormat(contentW*0.6, 5, tr(fmt.Sprintf("%d. %s", i+1, t.Nombre)), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.15, 5, fmt.Sprint(t.Cantidad), "", 0, "R", false, 0, "")
			pdf.CellFormat(contentW*0.25, 5, pesos(t.Monto), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func seccion(pdf *fpdf.Fpdf, tr func(string) string, w float64, titulo string, filas [][2]string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(w, 7, tr(titulo), "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, f := range filas {
		pdf.CellFormat(w*0.6, 5, tr(f[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(w*0.4, 5, f[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}

func pesos(d decimal.Decimal) string { return "$" + d.StringFixed(2) }
