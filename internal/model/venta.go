package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de venta.
const (
	EstadoVentaCompletada = "completada"
	EstadoVentaDevuelta   = "devuelta"
	EstadoVentaCancelada  = "cancelada"
)

// Metodos de pago. Each one has its own total column on Venta.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
	MetodoCheque        = "cheque"
	MetodoVale          = "vale"
	MetodoCredito       = "credito"
)

// MetodosPago lists the accepted payment methods in display order.
var MetodosPago = []string{MetodoEfectivo, MetodoTarjeta, MetodoTransferencia, MetodoCheque, MetodoVale, MetodoCredito}

// Venta is a completed (or later returned/cancelled) sale. Totals per payment
// method always add up to Total.
type Venta struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_ventas_sucursal_fecha,priority:1"`
	NumeroTicket    int             `gorm:"not null"`
	UsuarioID       *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteID       *uuid.UUID      `gorm:"type:uuid;index"`
	Fecha           time.Time       `gorm:"not null;index:idx_ventas_sucursal_fecha,priority:2"`
	NumeroArticulos int             `gorm:"not null;default:0"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Efectivo        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tarjeta         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Transferencia   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Cheque          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Vale            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Credito         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []VentaDetalle `gorm:"foreignKey:VentaID"`
}

func (v *Venta) BeforeCreate(*gorm.DB) error { ensureID(&v.ID); return nil }

// AsignarPago puts monto on the column of the given payment method.
// It reports false for an unknown method.
func (v *Venta) AsignarPago(metodo string, monto decimal.Decimal) bool {
	switch metodo {
	case MetodoEfectivo:
		v.Efectivo = v.Efectivo.Add(monto)
	case MetodoTarjeta:
		v.Tarjeta = v.Tarjeta.Add(monto)
	case MetodoTransferencia:
		v.Transferencia = v.Transferencia.Add(monto)
	case MetodoCheque:
		v.Cheque = v.Cheque.Add(monto)
	case MetodoVale:
		v.Vale = v.Vale.Add(monto)
	case MetodoCredito:
		v.Credito = v.Credito.Add(monto)
	default:
		return false
	}
	return true
}

// VentaDetalle is one line of a sale.
type VentaDetalle struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (d *VentaDetalle) BeforeCreate(*gorm.DB) error { ensureID(&d.ID); return nil }
