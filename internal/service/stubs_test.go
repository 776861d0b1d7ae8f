package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/kpi"
	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────
// Finders return copies so a service only changes state through the
// write methods, like it would against a database.

var (
	_ repository.ProductoRepository  = (*stubProductoRepo)(nil)
	_ repository.ClienteRepository   = (*stubClienteRepo)(nil)
	_ repository.ProveedorRepository = (*stubProveedorRepo)(nil)
	_ repository.UsuarioRepository   = (*stubUsuarioRepo)(nil)
	_ repository.VentaRepository     = (*stubVentaRepo)(nil)
	_ repository.CompraRepository    = (*stubCompraRepo)(nil)
	_ repository.CajaRepository      = (*stubCajaRepo)(nil)
	_ repository.TicketRepository    = (*stubTicketRepo)(nil)
	_ repository.ReporteRepository   = (*stubReporteRepo)(nil)
)

func ensure(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	items map[uuid.UUID]*model.Producto
}

func newStubProductoRepo(productos ...model.Producto) *stubProductoRepo {
	r := &stubProductoRepo{items: make(map[uuid.UUID]*model.Producto)}
	for i := range productos {
		p := productos[i]
		ensure(&p.ID)
		r.items[p.ID] = &p
	}
	return r
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	ensure(&p.ID)
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var out []model.Producto
	for _, id := range ids {
		if p, ok := r.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, sucursalID uuid.UUID, codigo string) (*model.Producto, error) {
	for _, p := range r.items {
		if p.SucursalID == sucursalID && p.Activo && p.CodigoBarras != nil && *p.CodigoBarras == codigo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) ListBySucursal(_ context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.items {
		if p.SucursalID == sucursalID && (incluirInactivos || p.Activo) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubProductoRepo) ListBajoStock(ctx context.Context, sucursalID uuid.UUID) ([]model.Producto, error) {
	all, _ := r.ListBySucursal(ctx, sucursalID, false)
	var out []model.Producto
	for _, p := range all {
		if p.Stock <= p.StockMinimo {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	if p, ok := r.items[id]; ok {
		p.Activo = activo
	}
	return nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.Stock+delta < 0 {
		return repository.ErrStockInsuficiente
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) UpdateCostoTx(_ *gorm.DB, id uuid.UUID, costo decimal.Decimal) error {
	if p, ok := r.items[id]; ok {
		p.Costo = costo
	}
	return nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type stubClienteRepo struct {
	items map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo(clientes ...model.Cliente) *stubClienteRepo {
	r := &stubClienteRepo{items: make(map[uuid.UUID]*model.Cliente)}
	for i := range clientes {
		c := clientes[i]
		ensure(&c.ID)
		r.items[c.ID] = &c
	}
	return r
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	ensure(&c.ID)
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, id := range ids {
		if c, ok := r.items[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) ListBySucursal(_ context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.items {
		if c.SucursalID == sucursalID && (incluirInactivos || c.Activo) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	if c, ok := r.items[id]; ok {
		c.Activo = activo
	}
	return nil
}

// ── Proveedores ───────────────────────────────────────────────────────────────

type stubProveedorRepo struct {
	items map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo(proveedores ...model.Proveedor) *stubProveedorRepo {
	r := &stubProveedorRepo{items: make(map[uuid.UUID]*model.Proveedor)}
	for i := range proveedores {
		p := proveedores[i]
		ensure(&p.ID)
		r.items[p.ID] = &p
	}
	return r
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	ensure(&p.ID)
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProveedorRepo) ListBySucursal(_ context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, p := range r.items {
		if p.SucursalID == sucursalID && (incluirInactivos || p.Activo) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubProveedorRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	if p, ok := r.items[id]; ok {
		p.Activo = activo
	}
	return nil
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	ensure(&u.ID)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Username == username && u.Activo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) ExisteUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUsuarioRepo) ListBySucursal(_ context.Context, sucursalID *uuid.UUID, incluirInactivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		if sucursalID != nil && (u.SucursalID == nil || *u.SucursalID != *sucursalID) {
			continue
		}
		if incluirInactivos || u.Activo {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	if u, ok := r.users[id]; ok {
		u.Activo = activo
	}
	return nil
}

// ── Ventas ────────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newStubVentaRepo(ventas ...model.Venta) *stubVentaRepo {
	r := &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
	for i := range ventas {
		v := ventas[i]
		ensure(&v.ID)
		r.ventas[v.ID] = &v
	}
	return r
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	ensure(&v.ID)
	for i := range v.Items {
		ensure(&v.Items[i].ID)
		v.Items[i].VentaID = v.ID
	}
	cp := *v
	cp.Items = append([]model.VentaDetalle(nil), v.Items...)
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	if v, ok := r.ventas[id]; ok {
		v.Estado = estado
	}
	return nil
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB, sucursalID uuid.UUID) (int, error) {
	last := 0
	for _, v := range r.ventas {
		if v.SucursalID == sucursalID && v.NumeroTicket > last {
			last = v.NumeroTicket
		}
	}
	return last + 1, nil
}

func (r *stubVentaRepo) ListEnVentana(_ context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.SucursalID == sucursalID && !v.Fecha.Before(desde) && !v.Fecha.After(hasta) {
			cp := *v
			cp.Items = nil
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

// ── Compras ───────────────────────────────────────────────────────────────────

type stubCompraRepo struct {
	compras []model.Compra
}

func (r *stubCompraRepo) DB() *gorm.DB { return nil }

func (r *stubCompraRepo) Create(_ context.Context, _ *gorm.DB, c *model.Compra) error {
	ensure(&c.ID)
	r.compras = append(r.compras, *c)
	return nil
}

func (r *stubCompraRepo) SumTotal(_ context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range r.compras {
		if c.SucursalID == sucursalID && !c.Fecha.Before(desde) && !c.Fecha.After(hasta) {
			total = total.Add(c.Total)
		}
	}
	return total, nil
}

// ── Caja ──────────────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	gastos      []model.Gasto
	movimientos []model.MovimientoCaja
	cortes      []model.CorteCaja
	// ventasEfectivo is what SumVentasEfectivo reports for any window.
	ventasEfectivo decimal.Decimal
}

func (r *stubCajaRepo) CreateGasto(_ context.Context, g *model.Gasto) error {
	ensure(&g.ID)
	r.gastos = append(r.gastos, *g)
	return nil
}

func (r *stubCajaRepo) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	ensure(&m.ID)
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubCajaRepo) CreateCorte(_ context.Context, c *model.CorteCaja) error {
	ensure(&c.ID)
	r.cortes = append(r.cortes, *c)
	return nil
}

func (r *stubCajaRepo) UltimoCorte(_ context.Context, sucursalID uuid.UUID) (*model.CorteCaja, error) {
	var ultimo *model.CorteCaja
	for i := range r.cortes {
		c := &r.cortes[i]
		if c.SucursalID == sucursalID && (ultimo == nil || c.Hasta.After(ultimo.Hasta)) {
			ultimo = c
		}
	}
	if ultimo == nil {
		return nil, nil
	}
	cp := *ultimo
	return &cp, nil
}

func (r *stubCajaRepo) ListCortes(_ context.Context, sucursalID uuid.UUID, limit int) ([]model.CorteCaja, error) {
	var out []model.CorteCaja
	for _, c := range r.cortes {
		if c.SucursalID == sucursalID {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubCajaRepo) SumGastos(_ context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, g := range r.gastos {
		if g.SucursalID == sucursalID && !g.Fecha.Before(desde) && !g.Fecha.After(hasta) {
			total = total.Add(g.Monto)
		}
	}
	return total, nil
}

func (r *stubCajaRepo) SumMovimientos(_ context.Context, sucursalID uuid.UUID, tipo string, desde, hasta time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.movimientos {
		if m.SucursalID == sucursalID && m.Tipo == tipo && !m.Fecha.Before(desde) && !m.Fecha.After(hasta) {
			total = total.Add(m.Monto)
		}
	}
	return total, nil
}

func (r *stubCajaRepo) SumVentasEfectivo(context.Context, uuid.UUID, time.Time, time.Time) (decimal.Decimal, error) {
	return r.ventasEfectivo, nil
}

// ── Tickets ───────────────────────────────────────────────────────────────────

type stubTicketRepo struct {
	tickets []*model.TicketSoporte
}

func (r *stubTicketRepo) CreateWithFolio(_ context.Context, t *model.TicketSoporte) error {
	ensure(&t.ID)
	folio := 0
	for _, x := range r.tickets {
		if x.SucursalID == t.SucursalID && x.Folio > folio {
			folio = x.Folio
		}
	}
	t.Folio = folio + 1
	cp := *t
	r.tickets = append(r.tickets, &cp)
	return nil
}

func (r *stubTicketRepo) FindByFolio(_ context.Context, sucursalID uuid.UUID, folio int) (*model.TicketSoporte, error) {
	for _, t := range r.tickets {
		if t.SucursalID == sucursalID && t.Folio == folio {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTicketRepo) List(_ context.Context, sucursalID uuid.UUID, estado string) ([]model.TicketSoporte, error) {
	var out []model.TicketSoporte
	for _, t := range r.tickets {
		if t.SucursalID == sucursalID && (estado == "" || t.Estado == estado) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTicketRepo) Update(_ context.Context, t *model.TicketSoporte) error {
	for i, x := range r.tickets {
		if x.ID == t.ID {
			cp := *t
			r.tickets[i] = &cp
		}
	}
	return nil
}

// ── Reportes ──────────────────────────────────────────────────────────────────

type stubReporteRepo struct {
	total30    decimal.Decimal
	diarios    []kpi.TotalDia
	porProd    []kpi.Agregado
	porCliente []kpi.Agregado
}

func (r *stubReporteRepo) SumVentas(context.Context, uuid.UUID, time.Time, time.Time) (decimal.Decimal, error) {
	return r.total30, nil
}

func (r *stubReporteRepo) TotalesDiarios(context.Context, uuid.UUID, *time.Location) ([]kpi.TotalDia, error) {
	return r.diarios, nil
}

func (r *stubReporteRepo) VentasPorProducto(context.Context, uuid.UUID, time.Time, time.Time) ([]kpi.Agregado, error) {
	return r.porProd, nil
}

func (r *stubReporteRepo) VentasPorCliente(context.Context, uuid.UUID, time.Time, time.Time) ([]kpi.Agregado, error) {
	return r.porCliente, nil
}

// ── Cache ─────────────────────────────────────────────────────────────────────

// stubCache is shared by the dashboard goroutines.
type stubCache struct {
	mu   sync.Mutex
	data map[string]any
	sets int
}

func newStubCache() *stubCache { return &stubCache{data: make(map[string]any)} }

func (c *stubCache) GetJSON(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false
	}
	switch d := dst.(type) {
	case *kpi.Resumen:
		*d = v.(kpi.Resumen)
	case *dto.ConsultaPrecioResponse:
		*d = v.(dto.ConsultaPrecioResponse)
	case *int64:
		*d = v.(int64)
	default:
		return false
	}
	return true
}

func (c *stubCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
	c.sets++
}

func (c *stubCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

func (c *stubCache) Incr(_ context.Context, key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := c.data[key].(int64)
	n++
	c.data[key] = n
	return n
}
