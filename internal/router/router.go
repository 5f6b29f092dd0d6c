package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/thiagopvn/pastelaria-24h-sub000/internal/config"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/handler"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/middleware"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/model"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/repository"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/service"
	"github.com/thiagopvn/pastelaria-24h-sub000/internal/worker"
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
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	turnoRepo := repository.NewTurnoRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	movimentoRepo := repository.NewMovimentoRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	produtoSvc := service.NewProdutoService(produtoRepo)
	turnoSvc := service.NewTurnoService(turnoRepo, auditoriaRepo, usuarioRepo, dispatcher)
	vendaSvc := service.NewVendaService(vendaRepo, turnoRepo, produtoRepo, dispatcher)
	cofreSvc := service.NewCofreService(movimentoRepo, turnoRepo, auditoriaRepo, dispatcher)
	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	produtosH := handler.NewProdutoHandler(produtoSvc)
	turnosH := handler.NewTurnoHandler(turnoSvc)
	vendasH := handler.NewVendaHandler(vendaSvc)
	cofreH := handler.NewCofreHandler(cofreSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)
	usuariosH := handler.NewUsuarioHandler(authSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	operador := middleware.RequireRole(model.PapelFuncionario, model.PapelAdmin)
	admin := middleware.RequireRole(model.PapelAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		turnos := v1.Group("/turnos")
		{
			turnos.POST("/abrir", operador, turnosH.Abrir)
			turnos.POST("/fechar", operador, turnosH.Fechar)
			turnos.GET("/ativo", operador, turnosH.GetAtivo)
			turnos.GET("/abertos", admin, turnosH.ListarAbertos)
			turnos.GET("/historico", admin, turnosH.Historico)
			turnos.GET("/:id", operador, turnosH.GetPorID)
			turnos.POST("/:id/recalcular", admin, turnosH.Recalcular)
			turnos.POST("/:id/sangrias", operador, turnosH.RegistrarSangria)
			turnos.GET("/:id/sangrias", operador, turnosH.ListarSangrias)
			turnos.DELETE("/:id/sangrias/:sangriaId", operador, turnosH.EstornarSangria)
			turnos.GET("/:id/auditoria", admin, auditoriaH.ListarPorTurno)
		}

		v1.POST("/vendas", operador, vendasH.Registrar)
		v1.GET("/vendas", operador, vendasH.Listar)
		v1.DELETE("/vendas/:id", operador, vendasH.Estornar)

		v1.GET("/produtos", operador, produtosH.Listar)
		v1.GET("/produtos/:id", operador, produtosH.Obter)

		cofre := v1.Group("/cofre", admin)
		{
			cofre.POST("/envelopes/:id", cofreH.ConfirmarEnvelope)
			cofre.GET("/envelopes/:id", cofreH.EnvelopeDoTurno)
			cofre.POST("/despesas", cofreH.RegistrarDespesa)
			cofre.GET("/saldo", cofreH.Saldo)
			cofre.GET("/movimentos", cofreH.ListarMovimentos)
		}

		v1.GET("/auditoria", admin, auditoriaH.Listar)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
			usuarios.PATCH("/:id/reativar", usuariosH.Reativar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
