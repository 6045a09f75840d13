package router

import (
	"time"

	"sukiism/internal/cache"
	"sukiism/internal/config"
	"sukiism/internal/handler"
	"sukiism/internal/infra"
	"sukiism/internal/middleware"
	"sukiism/internal/repository"
	"sukiism/internal/service"
	"sukiism/internal/sheet"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived resources built by main. RDB may be nil.
type Deps struct {
	Store    sheet.Store
	Cache    cache.Cache
	DB       *gorm.DB
	RDB      *redis.Client
	StoreCB  *infra.CircuitBreaker
	Notifier service.RestockNotifier
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Store/Cache/DB
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Env == "production"))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	itemRepo := repository.NewItemRepository(deps.Store, deps.Cache, cfg.ItemsSheet, cfg.RetiredSheet)
	txRepo := repository.NewTransactionRepository(deps.Store, deps.Cache, cfg.TransactionsSheet)
	userRepo := repository.NewUserRepository(deps.DB)
	auditRepo := repository.NewAuditRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	auditor := service.NewAuditor(auditRepo)
	ledgerSvc := service.NewLedgerService(itemRepo, txRepo, deps.Notifier)
	txSvc := service.NewTransactionService(itemRepo, txRepo, ledgerSvc, auditor)
	itemSvc := service.NewItemService(itemRepo, txRepo, ledgerSvc, txSvc, auditor)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	itemsH := handler.NewItemsHandler(itemSvc, ledgerSvc)
	txH := handler.NewTransactionsHandler(txSvc)
	restockH := handler.NewRestockHandler(ledgerSvc, cfg.Currency)
	auditH := handler.NewAuditHandler(auditRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.RDB, deps.StoreCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: staff, manager, admin: declared per-endpoint
		anyRole := middleware.RequireRole("staff", "manager", "admin")
		managers := middleware.RequireRole("manager", "admin")

		v1.GET("/dashboard", anyRole, itemsH.Dashboard)
		v1.GET("/categories", anyRole, itemsH.Categories)
		v1.POST("/cache/refresh", anyRole, itemsH.Refresh)

		v1.GET("/items", anyRole, itemsH.List)
		v1.GET("/items/:code", anyRole, itemsH.Get)
		v1.POST("/items", anyRole, itemsH.Create)
		items := v1.Group("/items", managers)
		{
			items.PUT("/:code", itemsH.Update)
			items.DELETE("/:code", itemsH.Delete)
			items.POST("/:code/recompute", itemsH.Recompute)
			items.GET("/:code/audit", auditH.History)
		}

		v1.GET("/transactions", anyRole, txH.List)
		v1.POST("/transactions", anyRole, txH.Record)
		v1.POST("/transactions/:row/approve", managers, txH.Approve)

		v1.GET("/restock", anyRole, restockH.Report)
		v1.GET("/restock/pdf", anyRole, restockH.PDF)

		v1.GET("/alerts/dead", middleware.RequireRole("admin"), handler.DeadLetters(deps.RDB))

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
