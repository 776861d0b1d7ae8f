package repository

import (
	"context"
	"time"

	"crovpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompraRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error
	SumTotal(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *compraRepo) SumTotal(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Compra{}).
		Where("sucursal_id = ? AND fecha BETWEEN ? AND ?", sucursalID, desde.UTC(), hasta.UTC()).
		Select("COALESCE(SUM(total), 0)").
		Row().Scan(&total)
	return total, err
}
