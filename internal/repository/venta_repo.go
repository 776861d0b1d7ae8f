package repository

import (
	"context"
	"time"

	"crovpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	// NextTicketNumber must run inside the transaction that inserts the sale.
	NextTicketNumber(ctx context.Context, tx *gorm.DB, sucursalID uuid.UUID) (int, error)
	// ListEnVentana returns every sale of the branch with fecha in [desde, hasta], items excluded.
	ListEnVentana(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]model.Venta, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Venta{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *ventaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB, sucursalID uuid.UUID) (int, error) {
	if err := lockSucursal(tx.WithContext(ctx), sucursalID); err != nil {
		return 0, err
	}
	var last int
	err := tx.WithContext(ctx).Model(&model.Venta{}).
		Where("sucursal_id = ?", sucursalID).
		Select("COALESCE(MAX(numero_ticket), 0)").
		Row().Scan(&last)
	return last + 1, err
}

func (r *ventaRepo) ListEnVentana(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND fecha BETWEEN ? AND ?", sucursalID, desde.UTC(), hasta.UTC()).
		Order("fecha ASC").
		Find(&ventas).Error
	return ventas, err
}

// lockSucursal serializes per-branch counters on Postgres (SELECT ... FOR UPDATE).
// SQLite drops the locking clause and already serializes writers.
func lockSucursal(tx *gorm.DB, sucursalID uuid.UUID) error {
	var s model.Sucursal
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", sucursalID).Limit(1).Find(&s).Error
}
