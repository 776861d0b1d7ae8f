package assistant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"crovpos/internal/kpi"
	"crovpos/internal/repository"
)

// MaxFilas caps every fallback query.
const MaxFilas = 100

// ErrConsultaInvalida means the structured query does not fit the schema
// description. The dispatcher answers it with a clarification request.
var ErrConsultaInvalida = errors.New("consulta inválida")

// Operaciones of a structured query.
const (
	OpListar   = "listar"
	OpContar   = "contar"
	OpSumar    = "sumar"
	OpPromedio = "promedio"
	OpMaximo   = "maximo"
	OpMinimo   = "minimo"
)

var agregados = map[string]string{
	OpContar:   "COUNT",
	OpSumar:    "SUM",
	OpPromedio: "AVG",
	OpMaximo:   "MAX",
	OpMinimo:   "MIN",
}

var operadores = map[string]string{
	"eq":       "=",
	"ne":       "<>",
	"gt":       ">",
	"gte":      ">=",
	"lt":       "<",
	"lte":      "<=",
	"contiene": "LIKE",
}

// Filtro is one condition of a structured query.
type Filtro struct {
	Campo    string `json:"campo"`
	Operador string `json:"operador"`
	Valor    any    `json:"valor"`
}

// StructuredQuery is what the completion service writes instead of SQL.
// Identifiers are names from the SchemaDescription; nothing in it is ever
// concatenated into a statement without being matched against it first.
type StructuredQuery struct {
	Entidad     string   `json:"entidad"`
	Operacion   string   `json:"operacion"`
	Campo       string   `json:"campo,omitempty"`
	Campos      []string `json:"campos,omitempty"`
	Filtros     []Filtro `json:"filtros,omitempty"`
	AgruparPor  string   `json:"agrupar_por,omitempty"`
	Desde       string   `json:"desde,omitempty"`
	Hasta       string   `json:"hasta,omitempty"`
	OrdenarPor  string   `json:"ordenar_por,omitempty"`
	Descendente bool     `json:"descendente,omitempty"`
	Limite      int      `json:"limite,omitempty"`
}

func invalida(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConsultaInvalida, fmt.Sprintf(format, args...))
}

// Plan validates q against the description and builds the branch-scoped
// plan. Dates are calendar days in sol.Ahora's location.
func (d SchemaDescription) Plan(q StructuredQuery, sol Solicitud) (repository.ConsultaPlan, error) {
	e, ok := d.entidad(q.Entidad)
	if !ok {
		return repository.ConsultaPlan{}, invalida("no conozco la entidad %q", q.Entidad)
	}
	plan := repository.ConsultaPlan{
		Tabla:           e.Nombre,
		SucursalColumna: e.sucursalColumna,
		SucursalID:      sol.SucursalID,
		Limit:           MaxFilas,
	}

	op := strings.ToLower(strings.TrimSpace(q.Operacion))
	if op == "" {
		op = OpListar
	}
	if err := seleccion(e, op, q, &plan); err != nil {
		return repository.ConsultaPlan{}, err
	}
	if err := condiciones(e, q.Filtros, &plan); err != nil {
		return repository.ConsultaPlan{}, err
	}
	if err := rango(e, q.Desde, q.Hasta, sol.Ahora.Location(), &plan); err != nil {
		return repository.ConsultaPlan{}, err
	}
	if err := orden(e, op, q, &plan); err != nil {
		return repository.ConsultaPlan{}, err
	}
	if q.Limite > 0 && q.Limite < MaxFilas {
		plan.Limit = q.Limite
	}
	return plan, nil
}

func seleccion(e *Entidad, op string, q StructuredQuery, plan *repository.ConsultaPlan) error {
	if op == OpListar {
		if q.AgruparPor != "" {
			return invalida("agrupar_por requiere una operación de agregado")
		}
		if len(q.Campos) == 0 {
			for _, c := range e.Columnas {
				plan.Columnas = append(plan.Columnas, c.Nombre)
			}
			return nil
		}
		for _, nombre := range q.Campos {
			c, ok := e.columna(nombre)
			if !ok {
				return invalida("%s no tiene el campo %q", e.Nombre, nombre)
			}
			plan.Columnas = append(plan.Columnas, c.Nombre)
		}
		return nil
	}

	fn, ok := agregados[op]
	if !ok {
		return invalida("operación %q no soportada", op)
	}
	expr := fn + "(*)"
	if op != OpContar {
		c, ok := e.columna(q.Campo)
		if !ok {
			return invalida("%s necesita un campo de %s", op, e.Nombre)
		}
		numerico := c.Tipo == ColNumero
		if !numerico && !((op == OpMaximo || op == OpMinimo) && c.Tipo == ColFecha) {
			return invalida("no se puede aplicar %s al campo %s", op, c.Nombre)
		}
		expr = fn + "(" + c.Nombre + ")"
	}
	if q.AgruparPor != "" {
		g, ok := e.columna(q.AgruparPor)
		if !ok {
			return invalida("%s no tiene el campo %q", e.Nombre, q.AgruparPor)
		}
		plan.Columnas = append(plan.Columnas, g.Nombre)
		plan.GroupBy = g.Nombre
	}
	plan.Columnas = append(plan.Columnas, expr+" AS total")
	return nil
}

func condiciones(e *Entidad, filtros []Filtro, plan *repository.ConsultaPlan) error {
	for _, f := range filtros {
		c, ok := e.columna(f.Campo)
		if !ok {
			return invalida("%s no tiene el campo %q", e.Nombre, f.Campo)
		}
		sqlOp, ok := operadores[strings.ToLower(f.Operador)]
		if !ok {
			return invalida("operador %q no soportado", f.Operador)
		}
		switch f.Valor.(type) {
		case string, float64, int, int64, bool:
		default:
			return invalida("el valor de %s debe ser texto, número o booleano", c.Nombre)
		}
		valor := f.Valor
		if sqlOp == "LIKE" {
			s, ok := f.Valor.(string)
			if !ok || c.Tipo != ColTexto {
				return invalida("contiene solo aplica a texto")
			}
			valor = "%" + strings.ToLower(s) + "%"
		}
		plan.Condiciones = append(plan.Condiciones, repository.Condicion{Columna: c.Nombre, Operador: sqlOp, Valor: valor})
	}
	return nil
}

func rango(e *Entidad, desde, hasta string, loc *time.Location, plan *repository.ConsultaPlan) error {
	if desde == "" && hasta == "" {
		return nil
	}
	if e.fechaColumna == "" {
		return invalida("%s no tiene fechas", e.Nombre)
	}
	plan.FechaColumna = e.fechaColumna
	if desde != "" {
		t, err := time.ParseInLocation(time.DateOnly, desde, loc)
		if err != nil {
			return invalida("fecha desde %q no es YYYY-MM-DD", desde)
		}
		plan.Desde = &t
	}
	if hasta != "" {
		t, err := time.ParseInLocation(time.DateOnly, hasta, loc)
		if err != nil {
			return invalida("fecha hasta %q no es YYYY-MM-DD", hasta)
		}
		fin := kpi.Dia(t).Hasta
		plan.Hasta = &fin
	}
	if plan.Desde != nil && plan.Hasta != nil && plan.Desde.After(*plan.Hasta) {
		return invalida("el rango de fechas está invertido")
	}
	return nil
}

func orden(e *Entidad, op string, q StructuredQuery, plan *repository.ConsultaPlan) error {
	if q.OrdenarPor == "" {
		return nil
	}
	agregada := op != OpListar
	switch {
	case agregada && q.OrdenarPor == "total":
		plan.OrderBy = "total"
	case agregada && q.OrdenarPor == plan.GroupBy:
		plan.OrderBy = plan.GroupBy
	case agregada:
		return invalida("una consulta agregada solo se ordena por total o por el campo agrupado")
	default:
		c, ok := e.columna(q.OrdenarPor)
		if !ok {
			return invalida("%s no tiene el campo %q", e.Nombre, q.OrdenarPor)
		}
		plan.OrderBy = c.Nombre
	}
	plan.Desc = q.Descendente
	return nil
}
