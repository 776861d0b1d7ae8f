package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PrioridadBaja  = "baja"
	PrioridadMedia = "media"
	PrioridadAlta  = "alta"

	TicketAbierto   = "abierto"
	TicketEnProceso = "en_proceso"
	TicketCerrado   = "cerrado"
)

// TicketSoporte is an internal support request. Folio is sequential per branch.
type TicketSoporte struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SucursalID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_folio,priority:1"`
	Folio       int        `gorm:"not null;uniqueIndex:idx_ticket_folio,priority:2"`
	UsuarioID   *uuid.UUID `gorm:"type:uuid"`
	Titulo      string     `gorm:"not null"`
	Descripcion string     `gorm:"not null;default:''"`
	Prioridad   string     `gorm:"type:varchar(10);not null;default:'media'"`
	Estado      string     `gorm:"type:varchar(20);not null;default:'abierto'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CerradoAt   *time.Time
}

func (TicketSoporte) TableName() string { return "tickets_soporte" }

func (t *TicketSoporte) BeforeCreate(*gorm.DB) error { ensureID(&t.ID); return nil }
