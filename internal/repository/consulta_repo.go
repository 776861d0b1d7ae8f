package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Condicion is one bound predicate of a ConsultaPlan. Columna and Operador
// come from an allow-list; Valor is always passed as a parameter.
type Condicion struct {
	Columna  string
	Operador string // =, <>, >, >=, <, <=, LIKE
	Valor    any
}

// ConsultaPlan is a validated, identifier-safe SELECT. It is produced by the
// assistant from a structured query and never carries free-form SQL.
type ConsultaPlan struct {
	Tabla       string
	Columnas    []string // select expressions built from allow-listed columns
	Condiciones []Condicion
	// Scope. SucursalColumna is empty for tables without a branch.
	SucursalColumna string
	SucursalID      uuid.UUID
	FechaColumna    string
	Desde, Hasta    *time.Time
	GroupBy         string
	OrderBy         string
	Desc            bool
	Limit           int
}

// ConsultaRepository executes read-only plans.
type ConsultaRepository interface {
	Ejecutar(ctx context.Context, plan ConsultaPlan) ([]map[string]any, error)
}

type consultaRepo struct{ db *gorm.DB }

func NewConsultaRepository(db *gorm.DB) ConsultaRepository { return &consultaRepo{db: db} }

func (r *consultaRepo) Ejecutar(ctx context.Context, plan ConsultaPlan) ([]map[string]any, error) {
	rows := make([]map[string]any, 0)
	err := r.soloLectura(ctx, func(tx *gorm.DB) error {
		return BuildConsulta(tx, plan).Find(&rows).Error
	})
	return rows, err
}

// soloLectura runs fn inside a READ ONLY transaction on Postgres. Other
// dialects only ever receive the SELECT built by BuildConsulta.
func (r *consultaRepo) soloLectura(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() != "postgres" {
		return fn(db)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION READ ONLY").Error; err != nil {
			return err
		}
		return fn(tx)
	})
}

// BuildConsulta turns a plan into a gorm SELECT chain on db.
func BuildConsulta(db *gorm.DB, plan ConsultaPlan) *gorm.DB {
	q := db.Table(plan.Tabla).Select(strings.Join(plan.Columnas, ", "))
	if plan.SucursalColumna != "" {
		q = q.Where(plan.SucursalColumna+" = ?", plan.SucursalID)
	}
	if plan.FechaColumna != "" {
		if plan.Desde != nil {
			q = q.Where(plan.FechaColumna+" >= ?", plan.Desde.UTC())
		}
		if plan.Hasta != nil {
			q = q.Where(plan.FechaColumna+" <= ?", plan.Hasta.UTC())
		}
	}
	for _, c := range plan.Condiciones {
		if c.Operador == "LIKE" {
			q = q.Where("LOWER("+c.Columna+") LIKE ?", c.Valor)
			continue
		}
		q = q.Where(c.Columna+" "+c.Operador+" ?", c.Valor)
	}
	if plan.GroupBy != "" {
		q = q.Group(plan.GroupBy)
	}
	if plan.OrderBy != "" {
		dir := " ASC"
		if plan.Desc {
			dir = " DESC"
		}
		q = q.Order(plan.OrderBy + dir)
	}
	if plan.Limit > 0 {
		q = q.Limit(plan.Limit)
	}
	return q
}
