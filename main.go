package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/controllers"
	"github.com/kendall-kelly/chatwidget-api/logger"
	"github.com/kendall-kelly/chatwidget-api/middleware"
	"github.com/kendall-kelly/chatwidget-api/services"
	"github.com/kendall-kelly/chatwidget-api/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthMessage = "Chat widget API is running"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.ConnectDatabase(); err != nil {
		appLog.WithError(err).Error("failed to connect to database", nil)
		os.Exit(1)
	}
	if err := config.Migrate(config.GetDB()); err != nil {
		appLog.WithError(err).Error("failed to migrate database", nil)
		os.Exit(1)
	}

	pipeline, err := services.NewPipeline(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Error("failed to set up widget pipeline", nil)
		os.Exit(1)
	}
	services.SetIframeService(services.NewIframeService(config.GetDB(), pipeline, appLog))
	utils.ArtifactDir = cfg.IframeOutputDir

	auth, err := middleware.EnsureValidToken(cfg, appLog)
	if err != nil {
		appLog.WithError(err).Error("failed to set up authentication", nil)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, appLog, auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("server listening", map[string]interface{}{
			"port":           cfg.Port,
			"env":            cfg.GoEnv,
			"artifact_store": cfg.ArtifactStore,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Error("server stopped", nil)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.BuildTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("graceful shutdown failed", nil)
	}
	appLog.Info("server stopped", nil)
}

// setupRouter wires every route. auth validates access tokens on the API
// routes; tests pass a stand-in.
func setupRouter(cfg *config.Config, appLog logger.Logger, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	if len(cfg.CORSAllowedOrigins) == 0 || cfg.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Generated widgets are embedded cross-origin by customer sites
	assets := router.Group(assetPrefix(cfg.IframePublicPrefix))
	if cfg.ArtifactStore == config.StoreS3 {
		assets.GET("/:filename", controllers.RedirectIframeAsset)
	} else {
		assets.GET("/:filename", controllers.GetIframeAsset)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		orders := v1.Group("/orders/:orderNumber", auth)
		{
			orders.POST("/iframe", middleware.RequireScope(middleware.ScopeWriteIframes), controllers.GenerateIframe)
			orders.GET("/iframe", middleware.RequireScope(middleware.ScopeReadIframes), controllers.GetIframeStatus)
		}
	}

	return router
}

func assetPrefix(prefix string) string {
	if prefix = strings.Trim(prefix, "/"); prefix == "" {
		return "/iframes"
	}
	return "/" + prefix
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": healthMessage,
	})
}

// databaseStatus checks database connectivity and lists the tables
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not configured",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
