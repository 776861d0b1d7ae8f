package service

import (
	"context"
	"testing"

	"crovpos/internal/dto"
	"crovpos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// ── Productos ─────────────────────────────────────────────────────────────────

func TestProductoCrear_Duplicados(t *testing.T) {
	suc := uuid.New()
	repo := newStubProductoRepo(model.Producto{SucursalID: suc, Nombre: "Café de Olla", CodigoBarras: strPtr("750100"), Precio: dec("35"), Activo: true})
	svc := NewProductoService(repo, nil)
	ctx := context.Background()

	_, err := svc.Crear(ctx, suc, dto.CrearProductoRequest{Nombre: "  CAFE de olla ", Precio: dec("30")})
	assert.ErrorIs(t, err, ErrDuplicado)

	_, err = svc.Crear(ctx, suc, dto.CrearProductoRequest{Nombre: "Café Soluble", CodigoBarras: strPtr("750100"), Precio: dec("30")})
	assert.ErrorIs(t, err, ErrDuplicado)

	// The same name in another branch is fine.
	res, err := svc.Crear(ctx, uuid.New(), dto.CrearProductoRequest{Nombre: "Café de Olla", Precio: dec("30")})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestProductoCrear_PrecioInvalido(t *testing.T) {
	svc := NewProductoService(newStubProductoRepo(), nil)
	_, err := svc.Crear(context.Background(), uuid.New(), dto.CrearProductoRequest{Nombre: "Agua", Precio: dec("0")})
	assert.ErrorIs(t, err, ErrDatosInvalidos)
}

func TestProductoConsultarPrecio_CacheEInvalidacion(t *testing.T) {
	suc := uuid.New()
	repo := newStubProductoRepo(model.Producto{SucursalID: suc, Nombre: "Leche Lala 1L", CodigoBarras: strPtr("7501020"), Precio: dec("28"), Stock: 12, Activo: true})
	cache := newStubCache()
	svc := NewProductoService(repo, cache)
	ctx := context.Background()

	p, err := svc.ConsultarPrecio(ctx, suc, "7501020")
	require.NoError(t, err)
	assertDec(t, "28", p.Precio)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.ConsultarPrecio(ctx, suc, "7501020")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "second lookup is served from cache")

	res, err := svc.ActualizarPrecio(ctx, suc, "leche lala", dec("29.5"))
	require.NoError(t, err)
	assert.Contains(t, res.Message, "$28.00 a $29.50")

	p, err = svc.ConsultarPrecio(ctx, suc, "7501020")
	require.NoError(t, err)
	assertDec(t, "29.5", p.Precio)
	assert.Equal(t, 2, cache.sets)

	_, err = svc.ConsultarPrecio(ctx, suc, "000")
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestProductoCambiarEstadoPorNombre(t *testing.T) {
	suc := uuid.New()
	repo := newStubProductoRepo(
		model.Producto{SucursalID: suc, Nombre: "Coca Cola 600ml", Precio: dec("18"), Activo: true},
		model.Producto{SucursalID: suc, Nombre: "Coca Cola Light", Precio: dec("18"), Activo: true},
	)
	svc := NewProductoService(repo, nil)
	ctx := context.Background()

	_, err := svc.CambiarEstadoPorNombre(ctx, suc, "coca", false)
	assert.ErrorIs(t, err, ErrAmbiguo)

	res, err := svc.CambiarEstadoPorNombre(ctx, suc, "light", false)
	require.NoError(t, err)
	assert.Equal(t, "Producto Coca Cola Light marcado como inactivo.", res.Message)

	res, err = svc.CambiarEstadoPorNombre(ctx, suc, "light", false)
	require.NoError(t, err)
	assert.Contains(t, res.Message, "ya estaba inactivo")

	activos, err := svc.Listar(ctx, suc, false)
	require.NoError(t, err)
	assert.Len(t, activos, 1)
}

func TestProductoActualizar_OtraSucursal(t *testing.T) {
	p := model.Producto{ID: uuid.New(), SucursalID: uuid.New(), Nombre: "Pan", Precio: dec("10"), Activo: true}
	svc := NewProductoService(newStubProductoRepo(p), nil)

	_, err := svc.Actualizar(context.Background(), uuid.New(), p.ID, dto.ActualizarProductoRequest{Nombre: strPtr("Pan dulce")})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

// ── Clientes y proveedores ────────────────────────────────────────────────────

func TestClienteCrearYDesactivar(t *testing.T) {
	suc := uuid.New()
	svc := NewClienteService(newStubClienteRepo())
	ctx := context.Background()

	res, err := svc.Crear(ctx, suc, dto.CrearClienteRequest{Nombre: " María José ", Telefono: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Cliente María José registrado.", res.Message)
	c := res.Data.(*dto.ClienteResponse)
	assert.Nil(t, c.Telefono)

	_, err = svc.Crear(ctx, suc, dto.CrearClienteRequest{Nombre: "maria jose"})
	assert.ErrorIs(t, err, ErrDuplicado)

	_, err = svc.CambiarEstadoPorNombre(ctx, suc, "maría", false)
	require.NoError(t, err)

	activos, err := svc.Listar(ctx, suc, false)
	require.NoError(t, err)
	assert.Empty(t, activos)

	todos, err := svc.Listar(ctx, suc, true)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

func TestProveedorCambiarEstado_NoEncontrado(t *testing.T) {
	svc := NewProveedorService(newStubProveedorRepo())
	_, err := svc.CambiarEstadoPorNombre(context.Background(), uuid.New(), "Bimbo", false)
	assert.ErrorIs(t, err, ErrNoEncontrado)

	_, err = svc.CambiarEstado(context.Background(), uuid.New(), uuid.New(), true)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

// ── Compras ───────────────────────────────────────────────────────────────────

func TestCompraRegistrarRapida_SubeStockYCosto(t *testing.T) {
	suc := uuid.New()
	prod := model.Producto{ID: uuid.New(), SucursalID: suc, Nombre: "Sabritas Original", Precio: dec("20"), Costo: dec("12"), Stock: 5, Activo: true}
	productos := newStubProductoRepo(prod)
	proveedores := newStubProveedorRepo(model.Proveedor{SucursalID: suc, Nombre: "Sabritas S.A.", Activo: true})
	compras := &stubCompraRepo{}
	svc := NewCompraService(compras, proveedores, productos, nil)

	res, err := svc.RegistrarRapida(context.Background(), suc, nil, dto.CompraRapidaRequest{
		Proveedor: "sabritas s.a.", Producto: "sabritas original", Cantidad: 24, CostoUnitario: dec("13.5"),
	})
	require.NoError(t, err)
	assert.Contains(t, res.Message, "$324.00")
	assert.Contains(t, res.Message, "Existencia actual: 29")

	assert.Equal(t, 29, productos.items[prod.ID].Stock)
	assertDec(t, "13.5", productos.items[prod.ID].Costo)
	require.Len(t, compras.compras, 1)
	assertDec(t, "324", compras.compras[0].Total)
}

func TestCompraRegistrarRapida_ProveedorInactivo(t *testing.T) {
	suc := uuid.New()
	svc := NewCompraService(&stubCompraRepo{},
		newStubProveedorRepo(model.Proveedor{SucursalID: suc, Nombre: "Lala", Activo: false}),
		newStubProductoRepo(model.Producto{SucursalID: suc, Nombre: "Leche", Precio: dec("28"), Activo: true}), nil)

	_, err := svc.RegistrarRapida(context.Background(), suc, nil, dto.CompraRapidaRequest{
		Proveedor: "Lala", Producto: "Leche", Cantidad: 1, CostoUnitario: dec("20"),
	})
	assert.ErrorIs(t, err, ErrInactivo)
}

// ── Tickets ───────────────────────────────────────────────────────────────────

func TestTicket_FolioYCambioDeEstado(t *testing.T) {
	suc := uuid.New()
	svc := NewTicketService(&stubTicketRepo{})
	ctx := context.Background()

	res, err := svc.Crear(ctx, suc, nil, dto.CrearTicketRequest{Titulo: "Impresora sin papel"})
	require.NoError(t, err)
	assert.Equal(t, "Ticket de soporte #1 creado (Impresora sin papel, prioridad media).", res.Message)

	res, err = svc.Crear(ctx, suc, nil, dto.CrearTicketRequest{Titulo: "Báscula descalibrada", Prioridad: model.PrioridadAlta})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Data.(*dto.TicketResponse).Folio)

	_, err = svc.Crear(ctx, suc, nil, dto.CrearTicketRequest{Titulo: "x", Prioridad: "urgente"})
	assert.ErrorIs(t, err, ErrDatosInvalidos)

	res, err = svc.CambiarEstado(ctx, suc, 1, model.TicketCerrado)
	require.NoError(t, err)
	assert.NotNil(t, res.Data.(*dto.TicketResponse).CerradoAt)

	_, err = svc.CambiarEstado(ctx, suc, 1, model.TicketCerrado)
	assert.ErrorIs(t, err, ErrDatosInvalidos)

	res, err = svc.CambiarEstado(ctx, suc, 1, model.TicketAbierto)
	require.NoError(t, err)
	assert.Nil(t, res.Data.(*dto.TicketResponse).CerradoAt)

	_, err = svc.CambiarEstado(ctx, suc, 9, model.TicketCerrado)
	assert.ErrorIs(t, err, ErrNoEncontrado)

	abiertos, err := svc.Listar(ctx, suc, model.TicketAbierto)
	require.NoError(t, err)
	assert.Len(t, abiertos, 2)
}
