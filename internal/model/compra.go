package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Compra is a purchase of merchandise from a supplier.
type Compra struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProveedorID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID   *uuid.UUID      `gorm:"type:uuid"`
	Fecha       time.Time       `gorm:"not null;index"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time

	Items []CompraDetalle `gorm:"foreignKey:CompraID"`
}

func (c *Compra) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }

type CompraDetalle struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompraID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad      int             `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (d *CompraDetalle) BeforeCreate(*gorm.DB) error { ensureID(&d.ID); return nil }
