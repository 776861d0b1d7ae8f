package repository

import (
	"context"

	"crovpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Cliente, error)
	ListBySucursal(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Cliente, error) {
	var clientes []model.Cliente
	if len(ids) == 0 {
		return clientes, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) ListBySucursal(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]model.Cliente, error) {
	var clientes []model.Cliente
	q := r.db.WithContext(ctx).Where("sucursal_id = ?", sucursalID)
	if !incluirInactivos {
		q = q.Where("activo = ?", true)
	}
	err := q.Order("nombre").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return r.db.WithContext(ctx).Model(&model.Cliente{}).Where("id = ?", id).Update("activo", activo).Error
}
