package worker

// scheduler.go
// Arms one timer per scheduled report (daily, and monthly on day 1). When a
// timer fires it enqueues one report job per active branch and re-arms
// itself for the next occurrence.

import (
	"context"
	"fmt"
	"time"

	"crovpos/internal/model"

	"github.com/rs/zerolog/log"
)

// SucursalLister lists the branches that get reports.
type SucursalLister interface {
	ListActivas(ctx context.Context) ([]model.Sucursal, error)
}

// ReporteEnqueuer is the part of Dispatcher the scheduler needs.
type ReporteEnqueuer interface {
	EnqueueReporte(ctx context.Context, payload ReporteJob) error
}

// Scheduler triggers the periodic KPI reports.
type Scheduler struct {
	sucursales SucursalLister
	cola       ReporteEnqueuer
	hora       int
	minuto     int
	loc        *time.Location
	now        func() time.Time
}

// NewScheduler parses at ("HH:MM") in loc.
func NewScheduler(sucursales SucursalLister, cola ReporteEnqueuer, at string, loc *time.Location) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("scheduler: REPORT_DAILY_AT %q: %w", at, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		sucursales: sucursales,
		cola:       cola,
		hora:       t.Hour(),
		minuto:     t.Minute(),
		loc:        loc,
		now:        time.Now,
	}, nil
}

// Start arms the daily and the monthly timers. Both stop with ctx.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, ReporteDiario, s.proximoDiario)
	go s.loop(ctx, ReporteMensual, s.proximoMensual)
	log.Info().Int("hora", s.hora).Int("minuto", s.minuto).Str("tz", s.loc.String()).Msg("scheduler: started")
}

func (s *Scheduler) loop(ctx context.Context, tipo string, proximo func(time.Time) time.Time) {
	siguiente := proximo(s.now())
	timer := time.NewTimer(siguiente.Sub(s.now()))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("tipo", tipo).Msg("scheduler: shutting down")
			return
		case <-timer.C:
			if _, err := s.Disparar(ctx, tipo, siguiente); err != nil {
				log.Error().Err(err).Str("tipo", tipo).Msg("scheduler: could not enqueue reports")
			}
			siguiente = proximo(s.now())
			timer.Reset(siguiente.Sub(s.now()))
		}
	}
}

// Disparar enqueues one report job of tipo per active branch, referenced to
// the calendar day of at. It returns the number of jobs enqueued.
func (s *Scheduler) Disparar(ctx context.Context, tipo string, at time.Time) (int, error) {
	sucursales, err := s.sucursales.ListActivas(ctx)
	if err != nil {
		return 0, fmt.Errorf("listar sucursales: %w", err)
	}
	fecha := at.In(s.loc).Format(time.DateOnly)
	n := 0
	for _, suc := range sucursales {
		job := ReporteJob{SucursalID: suc.ID.String(), Tipo: tipo, Fecha: fecha, Timezone: s.loc.String()}
		if err := s.cola.EnqueueReporte(ctx, job); err != nil {
			return n, fmt.Errorf("sucursal %s: %w", suc.ID, err)
		}
		n++
	}
	log.Info().Str("tipo", tipo).Str("fecha", fecha).Int("jobs", n).Msg("scheduler: reports enqueued")
	return n, nil
}

// proximoDiario is the next hh:mm strictly after t.
func (s *Scheduler) proximoDiario(t time.Time) time.Time {
	t = t.In(s.loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), s.hora, s.minuto, 0, 0, s.loc)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+1, s.hora, s.minuto, 0, 0, s.loc)
	}
	return next
}

// proximoMensual is the next day-1 hh:mm strictly after t.
func (s *Scheduler) proximoMensual(t time.Time) time.Time {
	t = t.In(s.loc)
	next := time.Date(t.Year(), t.Month(), 1, s.hora, s.minuto, 0, 0, s.loc)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month()+1, 1, s.hora, s.minuto, 0, 0, s.loc)
	}
	return next
}
