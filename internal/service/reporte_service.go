package service

import (
	"context"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/kpi"
	"crovpos/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Periodo names the KPI windows exposed to the manager.
type Periodo string

const (
	PeriodoDia    Periodo = "dia"
	PeriodoSemana Periodo = "semana"
	PeriodoMes    Periodo = "mes"
)

// Ventana returns the window of the period that contains t.
func (p Periodo) Ventana(t time.Time) (kpi.Ventana, error) {
	switch p {
	case PeriodoDia:
		return kpi.Dia(t), nil
	case PeriodoSemana:
		return kpi.Semana(t), nil
	case PeriodoMes:
		return kpi.Mes(t), nil
	}
	return kpi.Ventana{}, invalido("periodo %q no soportado", string(p))
}

const (
	topDefault = 10
	topMaximo  = 50
	// diasTop is the rolling window behind "último mes" rankings.
	diasTop = 30
)

// ReporteService computes the manager KPIs. Everything here is read only.
type ReporteService interface {
	Kpis(ctx context.Context, sucursalID uuid.UUID, periodo Periodo, fecha time.Time) (*kpi.Resumen, error)
	KpisVentana(ctx context.Context, sucursalID uuid.UUID, v kpi.Ventana) (*kpi.Resumen, error)
	Dashboard(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.DashboardResponse, error)
	Prediccion(ctx context.Context, sucursalID uuid.UUID, dias int, ahora time.Time) (*kpi.Prediccion, error)
	TopProductos(ctx context.Context, sucursalID uuid.UUID, limite int, ahora time.Time) (*dto.TopResponse, error)
	TopClientes(ctx context.Context, sucursalID uuid.UUID, limite int, ahora time.Time) (*dto.TopResponse, error)
}

type reporteService struct {
	repo         repository.ReporteRepository
	ventaRepo    repository.VentaRepository
	cajaRepo     repository.CajaRepository
	compraRepo   repository.CompraRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	cache        Cache
	cacheTTL     time.Duration
}

func NewReporteService(
	repo repository.ReporteRepository,
	ventaRepo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	compraRepo repository.CompraRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	cache Cache,
	cacheTTL time.Duration,
) ReporteService {
	return &reporteService{
		repo:         repo,
		ventaRepo:    ventaRepo,
		cajaRepo:     cajaRepo,
		compraRepo:   compraRepo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

func (s *reporteService) Kpis(ctx context.Context, sucursalID uuid.UUID, periodo Periodo, fecha time.Time) (*kpi.Resumen, error) {
	v, err := periodo.Ventana(fecha)
	if err != nil {
		return nil, err
	}
	return s.KpisVentana(ctx, sucursalID, v)
}

func (s *reporteService) KpisVentana(ctx context.Context, sucursalID uuid.UUID, v kpi.Ventana) (*kpi.Resumen, error) {
	key := kpiKey(ctx, s.cache, sucursalID, v)
	var cached kpi.Resumen
	if s.cache != nil && s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	ventas, err := s.ventaRepo.ListEnVentana(ctx, sucursalID, v.Desde, v.Hasta)
	if err != nil {
		return nil, err
	}
	gastos, err := s.cajaRepo.SumGastos(ctx, sucursalID, v.Desde, v.Hasta)
	if err != nil {
		return nil, err
	}
	compras, err := s.compraRepo.SumTotal(ctx, sucursalID, v.Desde, v.Hasta)
	if err != nil {
		return nil, err
	}
	diarios, err := s.repo.TotalesDiarios(ctx, sucursalID, v.Desde.Location())
	if err != nil {
		return nil, err
	}

	r := kpi.Calcular(ventas, v).ConGastos(gastos, compras).ConMeta(kpi.MaximoDiario(diarios))
	if s.cache != nil && s.cacheTTL > 0 {
		s.cache.SetJSON(ctx, key, r, s.cacheTTL)
	}
	return &r, nil
}

// Dashboard computes the day, week and month windows concurrently.
func (s *reporteService) Dashboard(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.DashboardResponse, error) {
	var resp dto.DashboardResponse
	g, gctx := errgroup.WithContext(ctx)
	for periodo, dst := range map[Periodo]*kpi.Resumen{
		PeriodoDia:    &resp.Dia,
		PeriodoSemana: &resp.Semana,
		PeriodoMes:    &resp.Mes,
	} {
		g.Go(func() error {
			r, err := s.Kpis(gctx, sucursalID, periodo, fecha)
			if err != nil {
				return err
			}
			*dst = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *reporteService) Prediccion(ctx context.Context, sucursalID uuid.UUID, dias int, ahora time.Time) (*kpi.Prediccion, error) {
	if dias <= 0 {
		return nil, invalido("dias debe ser mayor a cero")
	}
	v := kpi.UltimosDias(ahora, kpi.DiasBasePrediccion)
	total, err := s.repo.SumVentas(ctx, sucursalID, v.Desde, v.Hasta)
	if err != nil {
		return nil, err
	}
	p := kpi.Predecir(total, dias)
	return &p, nil
}

func (s *reporteService) TopProductos(ctx context.Context, sucursalID uuid.UUID, limite int, ahora time.Time) (*dto.TopResponse, error) {
	v := kpi.UltimosDias(ahora, diasTop)
	agg, err := s.repo.VentasPorProducto(ctx, sucursalID, v.Desde, v.Hasta)
	if err != nil {
		return nil, err
	}
	productos, err := s.productoRepo.FindByIDs(ctx, idsDe(agg))
	if err != nil {
		return nil, err
	}
	nombres := make(map[uuid.UUID]string, len(productos))
	for _, p := range productos {
		nombres[p.ID] = p.Nombre
	}
	items := kpi.Top(agg, nombres, normalizarLimite(limite), kpi.ProductoDesconocido, kpi.PorCantidad)
	return topResponse(v, items), nil
}

func (s *reporteService) TopClientes(ctx context.Context, sucursalID uuid.UUID, limite int, ahora time.Time) (*dto.TopResponse, error) {
	v := kpi.UltimosDias(ahora, diasTop)
	agg, err := s.repo.VentasPorCliente(ctx, sucursalID, v.Desde, v.Hasta)
	if err != nil {
		return nil, err
	}
	clientes, err := s.clienteRepo.FindByIDs(ctx, idsDe(agg))
	if err != nil {
		return nil, err
	}
	nombres := make(map[uuid.UUID]string, len(clientes))
	for _, c := range clientes {
		nombres[c.ID] = c.Nombre
	}
	items := kpi.Top(agg, nombres, normalizarLimite(limite), kpi.PublicoEnGeneral, kpi.PorMonto)
	return topResponse(v, items), nil
}

func idsDe(agg []kpi.Agregado) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(agg))
	for _, a := range agg {
		if a.ID != uuid.Nil {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func normalizarLimite(n int) int {
	switch {
	case n <= 0:
		return topDefault
	case n > topMaximo:
		return topMaximo
	}
	return n
}

func topResponse(v kpi.Ventana, items []kpi.TopItem) *dto.TopResponse {
	return &dto.TopResponse{Desde: formatFecha(v.Desde), Hasta: formatFecha(v.Hasta), Items: items}
}
