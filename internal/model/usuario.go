package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles de usuario.
const (
	RolCajero        = "cajero"
	RolSupervisor    = "supervisor"
	RolGerente       = "gerente"
	RolAdministrador = "administrador"
)

// Usuario stores employees with role-based access.
// SucursalID nil means the user may operate on any branch (administrador).
type Usuario struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SucursalID   *uuid.UUID `gorm:"type:uuid;index"`
	Username     string     `gorm:"uniqueIndex;not null"`
	Nombre       string     `gorm:"not null"`
	Email        *string
	Telefono     *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Usuario) BeforeCreate(*gorm.DB) error { ensureID(&u.ID); return nil }
