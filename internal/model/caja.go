package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gasto is an operating expense paid from the cash drawer.
type Gasto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID   *uuid.UUID      `gorm:"type:uuid"`
	Descripcion string          `gorm:"not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha       time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time
}

func (g *Gasto) BeforeCreate(*gorm.DB) error { ensureID(&g.ID); return nil }

// Tipos de movimiento de caja.
const (
	MovimientoRetiro = "retiro"
	MovimientoFondo  = "fondo"
)

// MovimientoCaja is an immutable cash drawer event: a withdrawal or a float deposit.
// Movements are never updated or deleted.
type MovimientoCaja struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID  *uuid.UUID      `gorm:"type:uuid"`
	Tipo       string          `gorm:"type:varchar(20);not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo     string          `gorm:"not null;default:''"`
	Fecha      time.Time       `gorm:"not null;index"`
	CreatedAt  time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

func (m *MovimientoCaja) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }

// CorteCaja is the reconciliation of the drawer for the period [Desde, Hasta].
// MontoEsperado = fondos + ventas en efectivo - retiros - gastos.
type CorteCaja struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID      *uuid.UUID      `gorm:"type:uuid"`
	Desde          time.Time       `gorm:"not null"`
	Hasta          time.Time       `gorm:"not null;index"`
	Fondos         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentasEfectivo decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Retiros        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Gastos         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoEsperado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoDeclarado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desvio         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DesvioPct      decimal.Decimal `gorm:"type:decimal(7,2);not null"`
	// ClasificacionDesvio: "normal" | "advertencia" | "critico"
	ClasificacionDesvio string `gorm:"type:varchar(20);not null"`
	Observaciones       *string
	CreatedAt           time.Time
}

func (CorteCaja) TableName() string { return "cortes_caja" }

func (c *CorteCaja) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }
