package worker

// report_worker.go
// Processes report jobs from QueueReportes: KPIs of the previous day or
// month of one branch, rendered to PDF and handed to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crovpos/internal/infra"
	"crovpos/internal/kpi"
	"crovpos/internal/repository"
	"crovpos/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Report kinds.
const (
	ReporteDiario  = "diario"
	ReporteMensual = "mensual"
)

const topReporte = 5

// ReporteJob asks for the report of the day or month before Fecha, in the
// calendar of Timezone.
type ReporteJob struct {
	SucursalID string `json:"sucursal_id"`
	Tipo       string `json:"tipo"`
	Fecha      string `json:"fecha"` // YYYY-MM-DD
	Timezone   string `json:"timezone"`
}

// Ventana resolves the window the job reports on.
func (j ReporteJob) Ventana() (kpi.Ventana, error) {
	loc, err := time.LoadLocation(j.Timezone)
	if err != nil {
		return kpi.Ventana{}, fmt.Errorf("timezone %q: %w", j.Timezone, err)
	}
	ref, err := time.ParseInLocation(time.DateOnly, j.Fecha, loc)
	if err != nil {
		return kpi.Ventana{}, fmt.Errorf("fecha %q: %w", j.Fecha, err)
	}
	switch j.Tipo {
	case ReporteDiario:
		return kpi.DiaAnterior(ref), nil
	case ReporteMensual:
		return kpi.MesAnterior(ref), nil
	}
	return kpi.Ventana{}, fmt.Errorf("tipo de reporte %q desconocido", j.Tipo)
}

// EmailEnqueuer is the part of Dispatcher the report worker needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload infra.Correo) error
}

// ReportWorker builds the scheduled KPI reports.
type ReportWorker struct {
	reportes      service.ReporteService
	sucursales    repository.SucursalRepository
	emails        EmailEnqueuer
	destinatarios []string
	storagePath   string
	now           func() time.Time
}

func NewReportWorker(
	reportes service.ReporteService,
	sucursales repository.SucursalRepository,
	emails EmailEnqueuer,
	destinatarios []string,
	storagePath string,
) *ReportWorker {
	return &ReportWorker{
		reportes:      reportes,
		sucursales:    sucursales,
		emails:        emails,
		destinatarios: destinatarios,
		storagePath:   storagePath,
		now:           time.Now,
	}
}

// Process renders one report. Malformed jobs and unknown branches are not
// retried; database and queue failures are.
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job ReporteJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return infra.Permanent(fmt.Errorf("report_worker: invalid payload: %w", err))
	}
	sucursalID, err := uuid.Parse(job.SucursalID)
	if err != nil {
		return infra.Permanent(fmt.Errorf("report_worker: sucursal_id %q invalido", job.SucursalID))
	}
	ventana, err := job.Ventana()
	if err != nil {
		return infra.Permanent(fmt.Errorf("report_worker: %w", err))
	}
	sucursal, err := w.sucursales.FindByID(ctx, sucursalID)
	if err != nil {
		return infra.Permanent(fmt.Errorf("report_worker: sucursal %s: %w", sucursalID, err))
	}

	resumen, err := w.reportes.KpisVentana(ctx, sucursalID, ventana)
	if err != nil {
		return fmt.Errorf("report_worker: kpis: %w", err)
	}
	top, err := w.reportes.TopProductos(ctx, sucursalID, topReporte, ventana.Hasta)
	if err != nil {
		return fmt.Errorf("report_worker: top productos: %w", err)
	}

	titulo := "Reporte diario"
	if job.Tipo == ReporteMensual {
		titulo = "Reporte mensual"
	}
	reporte := infra.ReporteKPI{
		Titulo:   titulo,
		Sucursal: sucursal.Nombre,
		Resumen:  *resumen,
		Top:      top.Items,
		Generado: w.now().In(ventana.Desde.Location()),
	}
	path, err := infra.GenerateReportePDF(reporte, sucursalID.String(), w.storagePath)
	if err != nil {
		return fmt.Errorf("report_worker: %w", err)
	}
	log.Info().Str("sucursal_id", sucursalID.String()).Str("tipo", job.Tipo).Str("path", path).Msg("report_worker: PDF generated")

	if len(w.destinatarios) == 0 {
		log.Warn().Msg("report_worker: REPORT_RECIPIENTS empty, report not mailed")
		return nil
	}
	return w.emails.EnqueueEmail(ctx, infra.Correo{
		Para:    w.destinatarios,
		Asunto:  fmt.Sprintf("%s %s: %s", titulo, sucursal.Nombre, periodoTexto(job.Tipo, ventana)),
		Cuerpo:  cuerpoReporte(sucursal.Nombre, resumen),
		Adjunto: path,
	})
}

func periodoTexto(tipo string, v kpi.Ventana) string {
	if tipo == ReporteMensual {
		return v.Desde.Format("2006-01")
	}
	return v.Desde.Format(time.DateOnly)
}

func cuerpoReporte(sucursal string, r *kpi.Resumen) string {
	return fmt.Sprintf(
		"Sucursal: %s\nVentas: $%s en %d transacciones\nTicket promedio: $%s\nBalance: $%s\n\nEl detalle va en el PDF adjunto.",
		sucursal, r.TotalVentas.StringFixed(2), r.NumeroTransacciones, r.TicketPromedio.StringFixed(2), r.Balance.StringFixed(2))
}
