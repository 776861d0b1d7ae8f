package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proveedor represents a supplier with commercial data.
type Proveedor struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SucursalID uuid.UUID `gorm:"type:uuid;index;not null"`
	Nombre     string    `gorm:"not null"`
	RFC        *string   `gorm:"column:rfc"`
	Contacto   *string
	Telefono   *string
	Email      *string
	Direccion  *string
	Activo     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Proveedor) TableName() string { return "proveedores" }

func (p *Proveedor) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
