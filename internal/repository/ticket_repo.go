package repository

import (
	"context"

	"crovpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRepository interface {
	// CreateWithFolio assigns the next folio of the branch and inserts the
	// ticket in one transaction.
	CreateWithFolio(ctx context.Context, t *model.TicketSoporte) error
	FindByFolio(ctx context.Context, sucursalID uuid.UUID, folio int) (*model.TicketSoporte, error)
	List(ctx context.Context, sucursalID uuid.UUID, estado string) ([]model.TicketSoporte, error)
	Update(ctx context.Context, t *model.TicketSoporte) error
}

type ticketRepo struct{ db *gorm.DB }

func NewTicketRepository(db *gorm.DB) TicketRepository { return &ticketRepo{db: db} }

func (r *ticketRepo) CreateWithFolio(ctx context.Context, t *model.TicketSoporte) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSucursal(tx, t.SucursalID); err != nil {
			return err
		}
		var last int
		if err := tx.Model(&model.TicketSoporte{}).
			Where("sucursal_id = ?", t.SucursalID).
			Select("COALESCE(MAX(folio), 0)").
			Row().Scan(&last); err != nil {
			return err
		}
		t.Folio = last + 1
		return tx.Create(t).Error
	})
}

func (r *ticketRepo) FindByFolio(ctx context.Context, sucursalID uuid.UUID, folio int) (*model.TicketSoporte, error) {
	var t model.TicketSoporte
	err := r.db.WithContext(ctx).Where("sucursal_id = ? AND folio = ?", sucursalID, folio).First(&t).Error
	return &t, err
}

// List filters by estado unless it is empty or "all".
func (r *ticketRepo) List(ctx context.Context, sucursalID uuid.UUID, estado string) ([]model.TicketSoporte, error) {
	var tickets []model.TicketSoporte
	q := r.db.WithContext(ctx).Where("sucursal_id = ?", sucursalID)
	if estado != "" && estado != "all" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Order("folio DESC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepo) Update(ctx context.Context, t *model.TicketSoporte) error {
	return r.db.WithContext(ctx).Save(t).Error
}
