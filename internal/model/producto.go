package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a sellable item of a branch catalog.
// Stock falls on every sale and rises on every purchase.
type Producto struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SucursalID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	CodigoBarras *string    `gorm:"index"`
	Nombre       string     `gorm:"index;not null"`
	Descripcion  *string
	Precio       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock        int             `gorm:"not null;default:0"`
	StockMinimo  int             `gorm:"not null;default:0"`
	ProveedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Producto) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
