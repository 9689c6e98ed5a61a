package main

import (
	"log/slog"
	"os"

	_ "authservice/api/swagger" // swagger docs
	"authservice/internal/config"
	"authservice/internal/database"
	"authservice/internal/handler"
	"authservice/internal/middleware"
	"authservice/internal/repository"
	"authservice/internal/service"
	"authservice/internal/token"
	"authservice/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Auth Service API
// @version         1.0
// @description     Multi-tenant authentication and user management: registration, login, token rotation and CRUD over users and tenants.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	privateKey, err := token.LoadRSAPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		logger.Error("failed to load signing key", "error", err)
		os.Exit(1)
	}
	publicKey, err := token.LoadRSAPublicKey(cfg.PublicKeyPath)
	if err != nil {
		logger.Error("failed to load verification key", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to PostgreSQL")

	// Set up WebSocket Hub for admin dashboards
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	issuer := token.NewIssuer(refreshTokenRepo, txManager, privateKey, []byte(cfg.RefreshTokenSecret))
	guard := middleware.NewAuth(publicKey, issuer, cfg.CookieDomain, cfg.IsProduction())

	authService := service.NewAuthService(userRepo, issuer, wsHub, logger)
	userService := service.NewUserService(userRepo, tenantRepo, refreshTokenRepo, txManager, wsHub, logger)
	tenantService := service.NewTenantService(tenantRepo, logger)

	authHandler := handler.NewAuthHandler(authService, guard, logger)
	userHandler := handler.NewUserHandler(userService, guard, logger)
	tenantHandler := handler.NewTenantHandler(tenantService, guard, logger)

	// Set up Gin Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.RequestID())

	// CORS configuration: credentialed so auth cookies survive cross-origin dev setups
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, publicKey)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	tenantHandler.RegisterRoutes(router.Group(""))

	logger.Info("server listening", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
