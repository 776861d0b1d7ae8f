package repository

import (
	"context"
	"slices"
	"strings"
	"time"

	"crovpos/internal/kpi"
	"crovpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReporteRepository runs the grouped queries behind the KPI dashboard.
// Only completed sales are counted.
type ReporteRepository interface {
	SumVentas(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
	TotalesDiarios(ctx context.Context, sucursalID uuid.UUID, loc *time.Location) ([]kpi.TotalDia, error)
	VentasPorProducto(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]kpi.Agregado, error)
	VentasPorCliente(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]kpi.Agregado, error)
}

type reporteRepo struct{ db *gorm.DB }

type ventaFechaTotal struct {
	Fecha time.Time
	Total decimal.Decimal
}

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) SumVentas(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("sucursal_id = ? AND estado = ? AND fecha BETWEEN ? AND ?",
			sucursalID, model.EstadoVentaCompletada, desde.UTC(), hasta.UTC()).
		Select("COALESCE(SUM(total), 0)").
		Row().Scan(&total)
	return total, err
}

// TotalesDiarios returns one total per calendar day in loc (UTC when nil),
// oldest first, so the days match the KPI windows built in the same zone.
func (r *reporteRepo) TotalesDiarios(ctx context.Context, sucursalID uuid.UUID, loc *time.Location) ([]kpi.TotalDia, error) {
	if loc == nil {
		loc = time.UTC
	}
	db := r.db.WithContext(ctx)
	rows, err := db.Model(&model.Venta{}).
		Select("fecha, total").
		Where("sucursal_id = ? AND estado = ?", sucursalID, model.EstadoVentaCompletada).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	porDia := make(map[string]decimal.Decimal)
	for rows.Next() {
		var v ventaFechaTotal
		if err := db.ScanRows(rows, &v); err != nil {
			return nil, err
		}
		dia := v.Fecha.In(loc).Format(time.DateOnly)
		porDia[dia] = porDia[dia].Add(v.Total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totales := make([]kpi.TotalDia, 0, len(porDia))
	for dia, total := range porDia {
		totales = append(totales, kpi.TotalDia{Dia: dia, Total: total})
	}
	slices.SortFunc(totales, func(a, b kpi.TotalDia) int { return strings.Compare(a.Dia, b.Dia) })
	return totales, nil
}

func (r *reporteRepo) VentasPorProducto(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]kpi.Agregado, error) {
	var agg []kpi.Agregado
	err := r.db.WithContext(ctx).Table("venta_detalles AS vd").
		Select("vd.producto_id AS id, SUM(vd.cantidad) AS cantidad, SUM(vd.subtotal) AS monto").
		Joins("JOIN ventas v ON v.id = vd.venta_id").
		Where("v.sucursal_id = ? AND v.estado = ? AND v.fecha BETWEEN ? AND ?",
			sucursalID, model.EstadoVentaCompletada, desde.UTC(), hasta.UTC()).
		Group("vd.producto_id").
		Scan(&agg).Error
	return agg, err
}

func (r *reporteRepo) VentasPorCliente(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]kpi.Agregado, error) {
	var agg []kpi.Agregado
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("cliente_id AS id, COUNT(*) AS cantidad, SUM(total) AS monto").
		Where("sucursal_id = ? AND estado = ? AND fecha BETWEEN ? AND ?",
			sucursalID, model.EstadoVentaCompletada, desde.UTC(), hasta.UTC()).
		Group("cliente_id").
		Scan(&agg).Error
	return agg, err
}
