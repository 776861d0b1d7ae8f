package model

import "github.com/google/uuid"

// ensureID assigns a random UUID when the primary key is still zero.
// Keys are generated in Go so the same models migrate on Postgres and SQLite.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Sucursal{},
		&Usuario{},
		&Cliente{},
		&Proveedor{},
		&Producto{},
		&Venta{},
		&VentaDetalle{},
		&Compra{},
		&CompraDetalle{},
		&Gasto{},
		&MovimientoCaja{},
		&CorteCaja{},
		&TicketSoporte{},
	}
}

// Consultables lists the branch-scoped models the assistant may query
// read-only. Detail tables and users stay out.
func Consultables() []any {
	return []any{
		&Venta{},
		&Producto{},
		&Cliente{},
		&Proveedor{},
		&Compra{},
		&Gasto{},
		&MovimientoCaja{},
		&CorteCaja{},
		&TicketSoporte{},
	}
}
