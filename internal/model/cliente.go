package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cliente is a named customer of a branch. Sales without a client are
// attributed to "Público en general".
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SucursalID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Nombre        string    `gorm:"not null"`
	Telefono      *string
	Email         *string
	RFC           *string         `gorm:"column:rfc"`
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c *Cliente) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }
