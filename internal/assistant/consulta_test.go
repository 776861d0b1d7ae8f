package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── Esquema ──────────────────────────────────────────────────────────────────

func TestNuevoEsquema_DescribeLasTablasConsultables(t *testing.T) {
	esquema := testEsquema(t)
	require.Len(t, esquema.Entidades, len(model.Consultables()))

	ventas, ok := esquema.entidad("Ventas")
	require.True(t, ok)
	tipos := make(map[string]string)
	for _, c := range ventas.Columnas {
		tipos[c.Nombre] = c.Tipo
	}
	assert.Equal(t, ColNumero, tipos["total"])
	assert.Equal(t, ColNumero, tipos["numero_articulos"])
	assert.Equal(t, ColFecha, tipos["fecha"])
	assert.Equal(t, ColID, tipos["id"])
	assert.Equal(t, ColTexto, tipos["estado"])
	assert.Equal(t, "fecha", ventas.fechaColumna)
	assert.Equal(t, "sucursal_id", ventas.sucursalColumna)

	productos, ok := esquema.entidad("productos")
	require.True(t, ok)
	assert.Equal(t, "created_at", productos.fechaColumna)

	for i := 1; i < len(esquema.Entidades); i++ {
		assert.Less(t, esquema.Entidades[i-1].Nombre, esquema.Entidades[i].Nombre)
	}
	assert.Contains(t, esquema.Texto(), "ventas: id (id), sucursal_id (id)")
}

func TestNuevoEsquema_OcultaPasswordHash(t *testing.T) {
	esquema, err := NuevoEsquema(&model.Usuario{})
	require.NoError(t, err)
	usuarios, ok := esquema.entidad("usuarios")
	require.True(t, ok)
	_, visible := usuarios.columna("password_hash")
	assert.False(t, visible)
	assert.NotContains(t, esquema.Texto(), "password_hash")
}

func TestNuevoEsquema_ExigeSucursal(t *testing.T) {
	_, err := NuevoEsquema(&model.Sucursal{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sucursal_id")
}

// ── Plan ─────────────────────────────────────────────────────────────────────

func TestPlan_ListarTodasLasColumnasConTope(t *testing.T) {
	esquema := testEsquema(t)
	sol := testSolicitud()

	plan, err := esquema.Plan(StructuredQuery{Entidad: "clientes", Limite: 500}, sol)
	require.NoError(t, err)
	assert.Equal(t, "clientes", plan.Tabla)
	assert.Contains(t, plan.Columnas, "nombre")
	assert.Equal(t, MaxFilas, plan.Limit)
	assert.Equal(t, sol.SucursalID, plan.SucursalID)

	plan, err = esquema.Plan(StructuredQuery{Entidad: "clientes", Operacion: OpListar, Campos: []string{"nombre"}, Limite: 5}, sol)
	require.NoError(t, err)
	assert.Equal(t, []string{"nombre"}, plan.Columnas)
	assert.Equal(t, 5, plan.Limit)
}

func TestPlan_AgregadoAgrupadoYOrdenado(t *testing.T) {
	plan, err := testEsquema(t).Plan(StructuredQuery{
		Entidad:     "gastos",
		Operacion:   "SUMAR",
		Campo:       "monto",
		AgruparPor:  "descripcion",
		OrdenarPor:  "total",
		Descendente: true,
		Filtros:     []Filtro{{Campo: "descripcion", Operador: "contiene", Valor: "Agua"}},
	}, testSolicitud())
	require.NoError(t, err)

	assert.Equal(t, []string{"descripcion", "SUM(monto) AS total"}, plan.Columnas)
	assert.Equal(t, "descripcion", plan.GroupBy)
	assert.Equal(t, "total", plan.OrderBy)
	assert.True(t, plan.Desc)
	require.Len(t, plan.Condiciones, 1)
	assert.Equal(t, repository.Condicion{Columna: "descripcion", Operador: "LIKE", Valor: "%agua%"}, plan.Condiciones[0])
}

func TestPlan_MaximoDeFecha(t *testing.T) {
	plan, err := testEsquema(t).Plan(StructuredQuery{Entidad: "ventas", Operacion: OpMaximo, Campo: "fecha"}, testSolicitud())
	require.NoError(t, err)
	assert.Equal(t, []string{"MAX(fecha) AS total"}, plan.Columnas)
}

func TestPlan_RangoEnLaZonaDelSolicitante(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	sol := Solicitud{SucursalID: uuid.New(), Ahora: time.Date(2025, 6, 11, 9, 0, 0, 0, loc)}

	plan, err := testEsquema(t).Plan(StructuredQuery{Entidad: "ventas", Operacion: OpContar, Desde: "2025-06-01", Hasta: "2025-06-01"}, sol)
	require.NoError(t, err)
	assert.Equal(t, "fecha", plan.FechaColumna)
	assert.Equal(t, []string{"COUNT(*) AS total"}, plan.Columnas)
	assert.True(t, plan.Desde.Equal(time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)))
	assert.True(t, plan.Hasta.Equal(time.Date(2025, 6, 2, 5, 59, 59, 999_000_000, time.UTC)))
}

func TestPlan_Rechazos(t *testing.T) {
	esquema := testEsquema(t)
	casos := map[string]StructuredQuery{
		"entidad desconocida":       {Entidad: "usuarios"},
		"detalle fuera de la lista": {Entidad: "venta_detalles"},
		"campo desconocido":         {Entidad: "ventas", Campos: []string{"total; DROP TABLE ventas"}},
		"operacion desconocida":     {Entidad: "ventas", Operacion: "borrar"},
		"suma sin campo":            {Entidad: "ventas", Operacion: OpSumar},
		"suma de texto":             {Entidad: "ventas", Operacion: OpSumar, Campo: "estado"},
		"promedio de fecha":         {Entidad: "ventas", Operacion: OpPromedio, Campo: "fecha"},
		"agrupar sin agregado":      {Entidad: "ventas", AgruparPor: "estado"},
		"operador desconocido":      {Entidad: "ventas", Filtros: []Filtro{{Campo: "estado", Operador: "or 1=1", Valor: "x"}}},
		"valor compuesto":           {Entidad: "ventas", Filtros: []Filtro{{Campo: "estado", Operador: "eq", Valor: []any{"a"}}}},
		"contiene sobre numero":     {Entidad: "ventas", Filtros: []Filtro{{Campo: "total", Operador: "contiene", Valor: "1"}}},
		"fecha mal escrita":         {Entidad: "ventas", Desde: "01/06/2025"},
		"rango invertido":           {Entidad: "ventas", Desde: "2025-06-10", Hasta: "2025-06-01"},
		"orden agregado invalido":   {Entidad: "ventas", Operacion: OpContar, OrdenarPor: "fecha"},
		"orden desconocido":         {Entidad: "ventas", OrdenarPor: "nada"},
	}
	for nombre, q := range casos {
		t.Run(nombre, func(t *testing.T) {
			_, err := esquema.Plan(q, testSolicitud())
			assert.ErrorIs(t, err, ErrConsultaInvalida)
		})
	}
}

// ── Ejecución real sobre SQLite ──────────────────────────────────────────────

func TestConsulta_EjecutaSoloDentroDeLaSucursal(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	sol := testSolicitud()
	otra := uuid.New()
	productos := []model.Producto{
		{SucursalID: sol.SucursalID, Nombre: "Pan blanco", Precio: decimal.NewFromInt(35), Stock: 4, Activo: true},
		{SucursalID: sol.SucursalID, Nombre: "Pan integral", Precio: decimal.NewFromInt(42), Stock: 9, Activo: true},
		{SucursalID: otra, Nombre: "Pan dulce", Precio: decimal.NewFromInt(12), Stock: 30, Activo: true},
	}
	require.NoError(t, db.Create(&productos).Error)

	llm := &fakeLLM{query: &StructuredQuery{
		Entidad:    "productos",
		Campos:     []string{"nombre", "stock"},
		Filtros:    []Filtro{{Campo: "nombre", Operador: "contiene", Valor: "PAN"}},
		OrdenarPor: "nombre",
	}}
	servicios, _ := newFakeServicios()
	d := NewDispatcher(llm, servicios, repository.NewConsultaRepository(db), testEsquema(t), 0)

	resp, err := d.Handle(context.Background(), Entrada{Mensaje: "¿qué panes tengo?", Solicitud: sol})
	require.NoError(t, err)
	require.Len(t, resp.Filas, 2)
	assert.Equal(t, "Pan blanco", resp.Filas[0]["nombre"])
	assert.Equal(t, "Pan integral", resp.Filas[1]["nombre"])
	assert.False(t, strings.Contains(resp.Texto, "Pan dulce"))
}
