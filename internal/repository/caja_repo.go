package repository

import (
	"context"
	"errors"
	"time"

	"crovpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaRepository persists drawer events. Gastos and movimientos are
// append-only; there is no Update or Delete on purpose.
type CajaRepository interface {
	CreateGasto(ctx context.Context, g *model.Gasto) error
	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	CreateCorte(ctx context.Context, c *model.CorteCaja) error
	// UltimoCorte returns nil, nil when the branch never closed the drawer.
	UltimoCorte(ctx context.Context, sucursalID uuid.UUID) (*model.CorteCaja, error)
	ListCortes(ctx context.Context, sucursalID uuid.UUID, limit int) ([]model.CorteCaja, error)
	SumGastos(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
	SumMovimientos(ctx context.Context, sucursalID uuid.UUID, tipo string, desde, hasta time.Time) (decimal.Decimal, error)
	SumVentasEfectivo(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateGasto(ctx context.Context, g *model.Gasto) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) CreateCorte(ctx context.Context, c *model.CorteCaja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) UltimoCorte(ctx context.Context, sucursalID uuid.UUID) (*model.CorteCaja, error) {
	var c model.CorteCaja
	err := r.db.WithContext(ctx).Where("sucursal_id = ?", sucursalID).Order("hasta DESC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) ListCortes(ctx context.Context, sucursalID uuid.UUID, limit int) ([]model.CorteCaja, error) {
	var cortes []model.CorteCaja
	err := r.db.WithContext(ctx).Where("sucursal_id = ?", sucursalID).
		Order("hasta DESC").Limit(limit).Find(&cortes).Error
	return cortes, err
}

func (r *cajaRepo) SumGastos(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Gasto{}).
		Where("sucursal_id = ? AND fecha BETWEEN ? AND ?", sucursalID, desde.UTC(), hasta.UTC()).
		Select("COALESCE(SUM(monto), 0)").
		Row().Scan(&total)
	return total, err
}

func (r *cajaRepo) SumMovimientos(ctx context.Context, sucursalID uuid.UUID, tipo string, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Where("sucursal_id = ? AND tipo = ? AND fecha BETWEEN ? AND ?", sucursalID, tipo, desde.UTC(), hasta.UTC()).
		Select("COALESCE(SUM(monto), 0)").
		Row().Scan(&total)
	return total, err
}

func (r *cajaRepo) SumVentasEfectivo(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("sucursal_id = ? AND estado = ? AND fecha BETWEEN ? AND ?",
			sucursalID, model.EstadoVentaCompletada, desde.UTC(), hasta.UTC()).
		Select("COALESCE(SUM(efectivo), 0)").
		Row().Scan(&total)
	return total, err
}
