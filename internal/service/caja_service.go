package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CajaService covers the cash drawer: expenses, withdrawals, float deposits
// and the cash cut. The drawer period runs from the last cut to now.
type CajaService interface {
	RegistrarGasto(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.GastoRequest) (*dto.ResultadoAccion, error)
	RegistrarMovimiento(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, tipo string, req dto.MovimientoCajaRequest) (*dto.ResultadoAccion, error)
	Resumen(ctx context.Context, sucursalID uuid.UUID) (*dto.ResumenCajaResponse, error)
	// Corte closes the current period. With exigirObservaciones, a critico
	// deviation is rejected unless observations are given.
	Corte(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.CorteCajaRequest, exigirObservaciones bool) (*dto.CorteCajaResponse, error)
	Historial(ctx context.Context, sucursalID uuid.UUID, limit int) ([]dto.CorteCajaResponse, error)
}

type cajaService struct {
	repo  repository.CajaRepository
	cache Cache
	now   func() time.Time
}

func NewCajaService(repo repository.CajaRepository, cache Cache) CajaService {
	return &cajaService{repo: repo, cache: cache, now: time.Now}
}

func (s *cajaService) RegistrarGasto(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.GastoRequest) (*dto.ResultadoAccion, error) {
	desc := strings.TrimSpace(req.Descripcion)
	if desc == "" {
		return nil, invalido("el gasto necesita una descripción")
	}
	if !req.Monto.IsPositive() {
		return nil, invalido("el monto debe ser mayor a cero")
	}
	g := &model.Gasto{
		SucursalID:  sucursalID,
		UsuarioID:   usuarioID,
		Descripcion: desc,
		Monto:       req.Monto.Round(2),
		Fecha:       s.now(),
	}
	if err := s.repo.CreateGasto(ctx, g); err != nil {
		return nil, err
	}
	invalidarKpis(ctx, s.cache, sucursalID)
	return dto.Ok(fmt.Sprintf("Gasto registrado: %s por $%s.", g.Descripcion, g.Monto.StringFixed(2)), map[string]any{
		"id":    g.ID.String(),
		"monto": g.Monto,
	}), nil
}

// RegistrarMovimiento stores a retiro or a fondo. A retiro cannot take more
// cash than the drawer is expected to hold.
func (s *cajaService) RegistrarMovimiento(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, tipo string, req dto.MovimientoCajaRequest) (*dto.ResultadoAccion, error) {
	if tipo != model.MovimientoRetiro && tipo != model.MovimientoFondo {
		return nil, invalido("tipo de movimiento %q no soportado", tipo)
	}
	if !req.Monto.IsPositive() {
		return nil, invalido("el monto debe ser mayor a cero")
	}
	monto := req.Monto.Round(2)
	if tipo == model.MovimientoRetiro {
		resumen, err := s.Resumen(ctx, sucursalID)
		if err != nil {
			return nil, err
		}
		if monto.GreaterThan(resumen.MontoEsperado) {
			return nil, invalido("no hay suficiente efectivo en caja: se esperan $%s", resumen.MontoEsperado.StringFixed(2))
		}
	}

	m := &model.MovimientoCaja{
		SucursalID: sucursalID,
		UsuarioID:  usuarioID,
		Tipo:       tipo,
		Monto:      monto,
		Motivo:     strings.TrimSpace(req.Motivo),
		Fecha:      s.now(),
	}
	if err := s.repo.CreateMovimiento(ctx, m); err != nil {
		return nil, err
	}
	etiqueta := "Retiro de caja"
	if tipo == model.MovimientoFondo {
		etiqueta = "Fondo de caja"
	}
	return dto.Ok(fmt.Sprintf("%s registrado por $%s.", etiqueta, m.Monto.StringFixed(2)), map[string]any{
		"id":    m.ID.String(),
		"tipo":  m.Tipo,
		"monto": m.Monto,
	}), nil
}

func (s *cajaService) Resumen(ctx context.Context, sucursalID uuid.UUID) (*dto.ResumenCajaResponse, error) {
	r, err := s.periodo(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	resp := resumenToResponse(r)
	return &resp, nil
}

func (s *cajaService) Corte(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.CorteCajaRequest, exigirObservaciones bool) (*dto.CorteCajaResponse, error) {
	if req.MontoDeclarado.IsNegative() {
		return nil, invalido("el monto declarado no puede ser negativo")
	}
	c, err := s.periodo(ctx, sucursalID)
	if err != nil {
		return nil, err
	}

	c.UsuarioID = usuarioID
	c.MontoDeclarado = req.MontoDeclarado.Round(2)
	c.Desvio = c.MontoDeclarado.Sub(c.MontoEsperado)
	if !c.MontoEsperado.IsZero() {
		c.DesvioPct = c.Desvio.Div(c.MontoEsperado).Mul(decimal.NewFromInt(100)).Round(2)
	} else if !c.Desvio.IsZero() {
		// Any difference against an empty drawer is a full deviation.
		c.DesvioPct = decimal.NewFromInt(100)
	}
	c.ClasificacionDesvio = clasificarDesvio(c.DesvioPct)
	c.Observaciones = trimPtr(req.Observaciones)

	if exigirObservaciones && c.ClasificacionDesvio == desvioCritico && c.Observaciones == nil {
		return nil, invalido("desvío crítico: se requieren observaciones del supervisor")
	}
	if err := s.repo.CreateCorte(ctx, c); err != nil {
		return nil, err
	}
	return corteToResponse(c), nil
}

func (s *cajaService) Historial(ctx context.Context, sucursalID uuid.UUID, limit int) ([]dto.CorteCajaResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	cortes, err := s.repo.ListCortes(ctx, sucursalID, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CorteCajaResponse, len(cortes))
	for i := range cortes {
		resp[i] = *corteToResponse(&cortes[i])
	}
	return resp, nil
}

// periodo sums the drawer events since the last cut. The returned CorteCaja
// carries the expected amount but no declaration yet.
func (s *cajaService) periodo(ctx context.Context, sucursalID uuid.UUID) (*model.CorteCaja, error) {
	hasta := s.now()
	var desde time.Time
	ultimo, err := s.repo.UltimoCorte(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	if ultimo != nil {
		// Bounds are inclusive; skip the instant the previous cut covered.
		desde = ultimo.Hasta.Add(time.Millisecond)
	}

	fondos, err := s.repo.SumMovimientos(ctx, sucursalID, model.MovimientoFondo, desde, hasta)
	if err != nil {
		return nil, err
	}
	retiros, err := s.repo.SumMovimientos(ctx, sucursalID, model.MovimientoRetiro, desde, hasta)
	if err != nil {
		return nil, err
	}
	gastos, err := s.repo.SumGastos(ctx, sucursalID, desde, hasta)
	if err != nil {
		return nil, err
	}
	ventas, err := s.repo.SumVentasEfectivo(ctx, sucursalID, desde, hasta)
	if err != nil {
		return nil, err
	}

	return &model.CorteCaja{
		SucursalID:     sucursalID,
		Desde:          desde,
		Hasta:          hasta,
		Fondos:         fondos,
		VentasEfectivo: ventas,
		Retiros:        retiros,
		Gastos:         gastos,
		MontoEsperado:  fondos.Add(ventas).Sub(retiros).Sub(gastos),
	}, nil
}

const (
	desvioNormal      = "normal"
	desvioAdvertencia = "advertencia"
	desvioCritico     = "critico"
)

// clasificarDesvio returns "normal" | "advertencia" | "critico"
// normal: |desvio| <= 1%, advertencia: <= 5%, critico: > 5%
func clasificarDesvio(pct decimal.Decimal) string {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return desvioNormal
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return desvioAdvertencia
	default:
		return desvioCritico
	}
}

func resumenToResponse(c *model.CorteCaja) dto.ResumenCajaResponse {
	desde := ""
	if !c.Desde.IsZero() {
		desde = formatFecha(c.Desde)
	}
	return dto.ResumenCajaResponse{
		Desde:          desde,
		Hasta:          formatFecha(c.Hasta),
		Fondos:         c.Fondos,
		VentasEfectivo: c.VentasEfectivo,
		Retiros:        c.Retiros,
		Gastos:         c.Gastos,
		MontoEsperado:  c.MontoEsperado,
	}
}

func corteToResponse(c *model.CorteCaja) *dto.CorteCajaResponse {
	return &dto.CorteCajaResponse{
		ID:             c.ID.String(),
		Resumen:        resumenToResponse(c),
		MontoDeclarado: c.MontoDeclarado,
		Desvio: dto.DesvioResponse{
			Monto:         c.Desvio,
			Porcentaje:    c.DesvioPct,
			Clasificacion: c.ClasificacionDesvio,
		},
		Observaciones: c.Observaciones,
	}
}
