package router

import (
	"context"
	"time"

	"crovpos/internal/assistant"
	"crovpos/internal/config"
	"crovpos/internal/handler"
	"crovpos/internal/metrics"
	"crovpos/internal/middleware"
	"crovpos/internal/model"
	"crovpos/internal/repository"
	"crovpos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Roles allowed per surface.
var (
	rolesGerencia = []string{model.RolGerente, model.RolAdministrador, model.RolSupervisor}
	rolesCatalogo = []string{model.RolGerente, model.RolAdministrador}
	rolesTodos    = []string{model.RolCajero, model.RolSupervisor, model.RolGerente, model.RolAdministrador}
)

// Deps are the infrastructure handles built by the composition root.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     redis.UniversalClient
	Servicios *assistant.Servicios
	LLM       assistant.CompletionService
}

// NewServicios wires repositories into the domain services shared by the
// HTTP layer, the assistant and the report worker.
func NewServicios(cfg *config.Config, db *gorm.DB, cache service.Cache) *assistant.Servicios {
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	ttl := time.Duration(cfg.KPICacheTTLSeconds) * time.Second
	return &assistant.Servicios{
		Reportes:    service.NewReporteService(reporteRepo, ventaRepo, cajaRepo, compraRepo, productoRepo, clienteRepo, cache, ttl),
		Productos:   service.NewProductoService(productoRepo, cache),
		Ventas:      service.NewVentaService(ventaRepo, productoRepo, clienteRepo, cache),
		Compras:     service.NewCompraService(compraRepo, proveedorRepo, productoRepo, cache),
		Caja:        service.NewCajaService(cajaRepo, cache),
		Clientes:    service.NewClienteService(clienteRepo),
		Proveedores: service.NewProveedorService(proveedorRepo),
		Empleados:   service.NewEmpleadoService(usuarioRepo),
		Tickets:     service.NewTicketService(ticketRepo),
	}
}

// New wires all handlers and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// ctx bounds the background purge of the rate limiters.
func New(ctx context.Context, d Deps) (*gin.Engine, error) {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	esquema, err := assistant.NuevoEsquema(model.Consultables()...)
	if err != nil {
		return nil, err
	}

	general := middleware.NewIPLimiter(1000, time.Minute)
	login := middleware.NewIPLimiter(20, time.Minute)
	chat := middleware.NewIPLimiter(30, time.Minute)
	for _, l := range []*middleware.IPLimiter{general, login, chat} {
		go l.PurgarCada(ctx, 5*time.Minute)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(general))

	// ── Services ─────────────────────────────────────────────────────────────
	svcs := d.Servicios
	authSvc := service.NewAuthService(repository.NewUsuarioRepository(d.DB), cfg)
	dispatcher := assistant.NewDispatcher(d.LLM, svcs, repository.NewConsultaRepository(d.DB), esquema, cfg.AssistantHistoryTurns)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	gerenteH := handler.NewGerenteHandler(svcs.Reportes, dispatcher, cfg.DefaultTimezone)
	clientesH := handler.NewClientesHandler(svcs.Clientes)
	proveedoresH := handler.NewProveedoresHandler(svcs.Proveedores)
	productosH := handler.NewProductosHandler(svcs.Productos)
	empleadosH := handler.NewEmpleadosHandler(svcs.Empleados)
	ticketsH := handler.NewTicketsHandler(svcs.Tickets)
	cajaH := handler.NewCajaHandler(svcs.Caja)
	ventasH := handler.NewVentasHandler(svcs.Ventas, cfg.DefaultTimezone)
	preciosH := handler.NewConsultaPreciosHandler(svcs.Productos)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var breaker handler.BreakerReporter
	if b, ok := d.LLM.(handler.BreakerReporter); ok {
		breaker = b
	}
	r.GET("/health", handler.Health(d.DB, d.Redis, breaker))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(login), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check for store terminals, no auth
	r.GET("/v1/precio/:sucursal/:codigo", preciosH.GetPrecio)

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	gerente := r.Group("/gerente", jwtMW, middleware.RequireRole(rolesGerencia...))
	{
		gerente.GET("/kpisDia", gerenteH.Kpis(service.PeriodoDia))
		gerente.GET("/kpisSemana", gerenteH.Kpis(service.PeriodoSemana))
		gerente.GET("/kpisMes", gerenteH.Kpis(service.PeriodoMes))
		gerente.GET("/prediccionVentas", gerenteH.PrediccionVentas)
		gerente.GET("/topProductos", gerenteH.TopProductos)
		gerente.GET("/topClientes", gerenteH.TopClientes)
		gerente.GET("/dashboard", gerenteH.Dashboard)
		gerente.POST("/consultaSql", middleware.RateLimiter(chat), gerenteH.ConsultaSql)
		gerente.GET("/acciones", gerenteH.Acciones)
		gerente.POST("/acciones/:accion", gerenteH.EjecutarAccion)
	}

	v1 := r.Group("/v1", jwtMW)
	{
		todos := middleware.RequireRole(rolesTodos...)
		catalogo := middleware.RequireRole(rolesCatalogo...)

		v1.GET("/clientes", todos, clientesH.Listar)
		v1.POST("/clientes", todos, clientesH.Crear)
		v1.PUT("/clientes/:id", catalogo, clientesH.Actualizar)
		v1.PATCH("/clientes/:id/estado", catalogo, clientesH.CambiarEstado)

		prov := v1.Group("/proveedores", catalogo)
		{
			prov.GET("", proveedoresH.Listar)
			prov.POST("", proveedoresH.Crear)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.PATCH("/:id/estado", proveedoresH.CambiarEstado)
		}

		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/bajo-stock", todos, productosH.BajoStock)
		prods := v1.Group("/productos", catalogo)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.PATCH("/:id/estado", productosH.CambiarEstado)
		}

		emp := v1.Group("/empleados", catalogo)
		{
			emp.GET("", empleadosH.Listar)
			emp.POST("", empleadosH.Crear)
			emp.PUT("/:id", empleadosH.Actualizar)
			emp.PATCH("/:id/estado", empleadosH.CambiarEstado)
		}

		tickets := v1.Group("/tickets", todos)
		{
			tickets.GET("", ticketsH.Listar)
			tickets.POST("", ticketsH.Crear)
			tickets.PATCH("/:folio/estado", ticketsH.CambiarEstado)
		}

		caja := v1.Group("/caja", todos)
		{
			caja.POST("/gastos", cajaH.Gasto)
			caja.POST("/retiros", cajaH.Retiro)
			caja.POST("/fondos", cajaH.Fondo)
			caja.GET("/resumen", cajaH.Resumen)
			caja.POST("/corte", cajaH.Corte)
			caja.GET("/historial", middleware.RequireRole(rolesGerencia...), cajaH.Historial)
		}

		ventas := v1.Group("/ventas", todos)
		{
			ventas.POST("", ventasH.Registrar)
			ventas.GET("", ventasH.ListarDia)
			ventas.POST("/:id/devolucion", middleware.RequireRole(rolesGerencia...), ventasH.Devolver)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
