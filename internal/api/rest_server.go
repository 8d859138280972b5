package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/casino-server/internal/auth"
	"github.com/annel0/casino-server/internal/middleware"
	"github.com/annel0/casino-server/internal/shop"
	"github.com/annel0/casino-server/internal/skins"
)

// RestServer is the casino's HTTP API server.
type RestServer struct {
	router     *gin.Engine
	authSvc    *auth.Service
	skinSvc    *skins.Service
	shopSvc    *shop.Service
	codec      *auth.TokenCodec
	port       string
	metrics    *ServerMetrics
	httpServer *http.Server
}

// Config contains the REST server wiring.
type Config struct {
	Port  string // e.g. ":8080"
	Auth  *auth.Service
	Skins *skins.Service
	Shop  *shop.Service
	Codec *auth.TokenCodec
}

// ErrorResponse is the JSON error body returned for rejected requests.
type ErrorResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewRestServer creates the API server and mounts all routes.
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8080"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New() // no default logger/recovery
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// Every unhandled panic is terminal for the request: generic 500,
		// no retry.
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: fmt.Sprint(recovered),
		})
	}))

	// CORS sits ahead of everything else so every route, the metrics
	// endpoint included, carries the headers.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, Cache-Control")
		c.Header("Access-Control-Expose-Headers", "Authorization, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("casino_api"))

	promMw := middleware.NewPrometheusMiddleware("casino_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:  router,
		authSvc: config.Auth,
		skinSvc: config.Skins,
		shopSvc: config.Shop,
		codec:   config.Codec,
		port:    config.Port,
		metrics: NewServerMetrics(),
	}

	server.setupRoutes()

	return server
}

// setupRoutes mounts the HTTP routes.
func (rs *RestServer) setupRoutes() {
	// Access gate: resolves an optional bearer token into a principal. It
	// never rejects by itself; rejection belongs to the role policy below.
	rs.router.Use(rs.accessGate())

	// Public auth endpoints
	authGroup := rs.router.Group("/api/auth")
	{
		authGroup.POST("/register", rs.handleRegister)
		authGroup.POST("/login", rs.handleLogin)
		authGroup.POST("/admin/login", rs.handleAdminLogin)
		authGroup.POST("/olvidar-contrasena", rs.handleForgotPassword)
		authGroup.POST("/restablecer-contrasena/:token", rs.handleResetPassword)
	}

	// Gameplay endpoints (bearer token required by the handler)
	api := rs.router.Group("/api")
	{
		api.POST("/victoria", rs.handleRecordWin)
		api.POST("/bjvictoria", rs.handleRecordBlackjackWin)
		api.GET("/ranking/wins", rs.handleTopWinners)
		api.GET("/ranking/bjwins", rs.handleTopBlackjackWinners)
	}

	// Shop
	shopGroup := rs.router.Group("/shop/api")
	{
		shopGroup.GET("/skins", rs.handleListShopSkins)
		shopGroup.POST("/comprar/skin", rs.handleBuySkin)
	}

	// Admin namespace: role policy requires ADMIN for every route below.
	admin := rs.router.Group("/admin/api")
	admin.Use(rs.requireAdmin())
	{
		admin.POST("/users", rs.handleListUsers)
		admin.PUT("/users/:id", rs.handleUpdateUser)
		admin.DELETE("/users/:id", rs.handleDeleteUser)
		admin.POST("/skins/create", rs.handleCreateSkin)
		admin.PUT("/skins/:id", rs.handleUpdateSkin)
		admin.DELETE("/skins/:id", rs.handleDeleteSkin)
		admin.GET("/stats", rs.handleStats)
	}

	// Legacy admin alias, same policy.
	legacy := rs.router.Group("/users")
	legacy.Use(rs.requireAdmin())
	{
		legacy.POST("", rs.handleListUsers)
		legacy.PUT("/:id", rs.handleUpdateUser)
		legacy.DELETE("/:id", rs.handleDeleteUser)
	}

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Router exposes the gin engine for tests.
func (rs *RestServer) Router() http.Handler {
	return rs.router
}

// Start runs the REST server until Stop is called.
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:    rs.port,
		Handler: rs.router,
	}
	err := rs.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down, draining in-flight requests.
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	return rs.httpServer.Shutdown(ctx)
}
