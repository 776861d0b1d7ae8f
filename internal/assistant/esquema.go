package assistant

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

// Column types exposed to the completion service.
const (
	ColTexto    = "texto"
	ColNumero   = "numero"
	ColFecha    = "fecha"
	ColBooleano = "booleano"
	ColID       = "id"
)

// columnasOcultas never reach the completion service nor a query.
var columnasOcultas = map[string]bool{"password_hash": true}

// Columna is one queryable column.
type Columna struct {
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
}

// Entidad is one queryable table. Every entity is scoped to a branch.
type Entidad struct {
	Nombre   string    `json:"entidad"`
	Columnas []Columna `json:"columnas"`

	sucursalColumna string
	fechaColumna    string
}

func (e *Entidad) columna(nombre string) (Columna, bool) {
	for _, c := range e.Columnas {
		if c.Nombre == nombre {
			return c, true
		}
	}
	return Columna{}, false
}

// SchemaDescription is the allow-list behind the fallback query path. It is
// built once at startup and passed to the dispatcher.
type SchemaDescription struct {
	Entidades []Entidad `json:"entidades"`
}

// NuevoEsquema describes the given GORM models. Each model must have a
// sucursal_id column so queries can be scoped to the requester's branch.
func NuevoEsquema(modelos ...any) (SchemaDescription, error) {
	cache := &sync.Map{}
	var desc SchemaDescription
	for _, m := range modelos {
		s, err := schema.Parse(m, cache, schema.NamingStrategy{})
		if err != nil {
			return SchemaDescription{}, fmt.Errorf("describir %T: %w", m, err)
		}
		e := Entidad{Nombre: s.Table}
		for _, dbName := range s.DBNames {
			if columnasOcultas[dbName] {
				continue
			}
			tipo := tipoColumna(s.FieldsByDBName[dbName])
			if tipo == "" {
				continue
			}
			e.Columnas = append(e.Columnas, Columna{Nombre: dbName, Tipo: tipo})
			switch {
			case dbName == "sucursal_id":
				e.sucursalColumna = dbName
			case dbName == "fecha":
				e.fechaColumna = dbName
			case dbName == "created_at" && e.fechaColumna == "":
				e.fechaColumna = dbName
			}
		}
		if e.sucursalColumna == "" {
			return SchemaDescription{}, fmt.Errorf("describir %s: la tabla no tiene sucursal_id", s.Table)
		}
		desc.Entidades = append(desc.Entidades, e)
	}
	sort.Slice(desc.Entidades, func(i, j int) bool { return desc.Entidades[i].Nombre < desc.Entidades[j].Nombre })
	return desc, nil
}

func (d SchemaDescription) entidad(nombre string) (*Entidad, bool) {
	nombre = strings.ToLower(strings.TrimSpace(nombre))
	for i := range d.Entidades {
		if d.Entidades[i].Nombre == nombre {
			return &d.Entidades[i], true
		}
	}
	return nil, false
}

// Texto renders the description for a prompt, one entity per line.
func (d SchemaDescription) Texto() string {
	var b strings.Builder
	for _, e := range d.Entidades {
		cols := make([]string, len(e.Columnas))
		for i, c := range e.Columnas {
			cols[i] = c.Nombre + " (" + c.Tipo + ")"
		}
		fmt.Fprintf(&b, "%s: %s\n", e.Nombre, strings.Join(cols, ", "))
	}
	return b.String()
}

func tipoColumna(f *schema.Field) string {
	if f == nil {
		return ""
	}
	dt := strings.ToLower(string(f.DataType))
	switch {
	case dt == "uuid":
		return ColID
	case strings.HasPrefix(dt, "decimal"), strings.HasPrefix(dt, "numeric"):
		return ColNumero
	case strings.HasPrefix(dt, "varchar"), dt == "text":
		return ColTexto
	}
	switch f.DataType {
	case schema.Bool:
		return ColBooleano
	case schema.Int, schema.Uint, schema.Float:
		return ColNumero
	case schema.Time:
		return ColFecha
	case schema.String:
		return ColTexto
	}
	return ""
}
