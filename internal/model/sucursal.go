package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sucursal is the branch every other business record belongs to.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"not null"`
	Direccion *string
	Telefono  *string
	Email     *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Sucursal) TableName() string { return "sucursales" }

func (s *Sucursal) BeforeCreate(*gorm.DB) error { ensureID(&s.ID); return nil }
