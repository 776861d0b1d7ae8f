package infra

import (
	"fmt"

	"crovpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the PostgreSQL pool. With autoMigrate it also brings the
// schema up to date (see Migrate).
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate runs AutoMigrate over every model and then the PostgreSQL-only
// patches GORM cannot express. It is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches creates the per-branch unique and expression indexes.
// Every statement is guarded with IF NOT EXISTS.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// ticket numbers restart per branch
		{"ventas numero_ticket por sucursal",
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_ventas_sucursal_ticket ON ventas (sucursal_id, numero_ticket)`},
		// fuzzy name lookups filter on lower(nombre)
		{"productos lower(nombre)",
			`CREATE INDEX IF NOT EXISTS idx_productos_sucursal_nombre_lower ON productos (sucursal_id, lower(nombre))`},
		{"clientes lower(nombre)",
			`CREATE INDEX IF NOT EXISTS idx_clientes_sucursal_nombre_lower ON clientes (sucursal_id, lower(nombre))`},
		{"proveedores lower(nombre)",
			`CREATE INDEX IF NOT EXISTS idx_proveedores_sucursal_nombre_lower ON proveedores (sucursal_id, lower(nombre))`},
		// low stock report
		{"productos bajo stock",
			`CREATE INDEX IF NOT EXISTS idx_productos_bajo_stock ON productos (sucursal_id) WHERE activo AND stock <= stock_minimo`},
		// the historical best day scans completed sales only
		{"ventas completadas",
			`CREATE INDEX IF NOT EXISTS idx_ventas_completadas ON ventas (sucursal_id, fecha) WHERE estado = 'completada'`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
