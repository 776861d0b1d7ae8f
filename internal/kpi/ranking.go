package kpi

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Placeholders for keys with no matching record.
const (
	ProductoDesconocido = "Producto desconocido"
	PublicoEnGeneral    = "Público en general"
)

// Criterio selects the ranking metric.
type Criterio int

const (
	PorCantidad Criterio = iota
	PorMonto
)

// Agregado is a grouped sum keyed by a foreign key. ID is uuid.Nil for rows
// without a key (for example, sales with no client).
type Agregado struct {
	ID       uuid.UUID
	Cantidad int64
	Monto    decimal.Decimal
}

// TopItem is one row of a ranking.
type TopItem struct {
	ID       string          `json:"id,omitempty"`
	Nombre   string          `json:"nombre"`
	Cantidad int64           `json:"cantidad"`
	Monto    decimal.Decimal `json:"monto"`
}

// Top sorts aggregates descending by the chosen metric and keeps the first n
// (all of them when n <= 0). Names come from nombres; unknown keys get the
// placeholder. Ties are broken by name so the order is stable.
func Top(agg []Agregado, nombres map[uuid.UUID]string, n int, placeholder string, criterio Criterio) []TopItem {
	items := make([]TopItem, 0, len(agg))
	for _, a := range agg {
		item := TopItem{Nombre: placeholder, Cantidad: a.Cantidad, Monto: a.Monto}
		if a.ID != uuid.Nil {
			item.ID = a.ID.String()
			if nombre, ok := nombres[a.ID]; ok && nombre != "" {
				item.Nombre = nombre
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		var c int
		if criterio == PorMonto {
			c = items[i].Monto.Cmp(items[j].Monto)
		} else {
			c = cmpInt(items[i].Cantidad, items[j].Cantidad)
		}
		if c != 0 {
			return c > 0
		}
		return items[i].Nombre < items[j].Nombre
	})

	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}

func cmpInt(a, b int64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}
