package router

import (
	"time"

	"puntoventa/internal/config"
	"puntoventa/internal/handler"
	"puntoventa/internal/middleware"
	"puntoventa/internal/repository"
	"puntoventa/internal/service"
	"puntoventa/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	entradaRepo := repository.NewEntradaInventarioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, rdb)
	clienteSvc := service.NewClienteService(clienteRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo)
	inventarioSvc := service.NewInventarioService(entradaRepo, productoRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, clienteRepo, entradaRepo, cajaSvc, dispatcher)
	pedidoSvc := service.NewPedidoService(pedidoRepo, productoRepo, proveedorRepo, entradaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	reportesH := handler.NewReportesHandler(ventaSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/precio/:codigo", consultaH.GetPrecioPorCodigo)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		operadores := middleware.RequireRole("cajero", "supervisor", "administrador")
		supervisores := middleware.RequireRole("supervisor", "administrador")

		v1.POST("/ventas", operadores, ventasH.RegistrarVenta)
		v1.GET("/ventas", operadores, ventasH.ListarVentas)
		v1.GET("/ventas/:id", operadores, ventasH.ObtenerVenta)
		v1.DELETE("/ventas/:id", supervisores, ventasH.AnularVenta)

		v1.GET("/productos", operadores, productosH.Listar)
		v1.GET("/productos/:id", operadores, productosH.ObtenerPorID)
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", operadores, cajaH.Abrir)
			caja.POST("/cerrar", operadores, cajaH.Cerrar)
			caja.POST("/movimiento", operadores, cajaH.RegistrarMovimiento)
			caja.GET("/activa", operadores, cajaH.GetActiva)
			caja.GET("/:id/reporte", operadores, cajaH.ObtenerReporte)
			caja.GET("/historial", supervisores, cajaH.Historial)
		}

		pedidos := v1.Group("/pedidos", supervisores)
		{
			pedidos.POST("", pedidosH.Crear)
			pedidos.GET("", pedidosH.Listar)
			pedidos.GET("/:id", pedidosH.Obtener)
			pedidos.POST("/:id/recibir", pedidosH.Recibir)
			pedidos.DELETE("/:id", pedidosH.Cancelar)
		}

		inv := v1.Group("/inventario", supervisores)
		{
			inv.POST("/entradas", inventarioH.RecibirStock)
			inv.GET("/entradas", inventarioH.ListarEntradas)
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
		}

		clientes := v1.Group("/clientes", operadores)
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.ObtenerPorID)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", middleware.RequireRole("administrador"), clientesH.Desactivar)
		}

		v1.GET("/proveedores", supervisores, proveedoresH.Listar)
		v1.GET("/proveedores/:id", supervisores, proveedoresH.ObtenerPorID)
		prov := v1.Group("/proveedores", middleware.RequireRole("administrador"))
		{
			prov.POST("", proveedoresH.Crear)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Desactivar)
		}

		v1.GET("/categorias", operadores, categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole("administrador"))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		reportes := v1.Group("/reportes", supervisores)
		{
			reportes.GET("/ventas-por-metodo", reportesH.VentasPorMetodo)
			reportes.GET("/ventas", reportesH.VentasPorRango)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
