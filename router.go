package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/config"
	"github.com/carbuapp/oficina-api/controllers"
	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/middleware"
	"github.com/carbuapp/oficina-api/services"
)

// Dependencies are the services the router hands to the controllers.
type Dependencies struct {
	DB               *gorm.DB
	Auth             *services.AuthService
	Workshops        *services.WorkshopService
	Clients          *services.ClientService
	Vehicles         *services.VehicleService
	TechnicalRecords *services.TechnicalRecordService
	Quotes           *services.QuoteService
	Documents        *services.DocumentService
}

// newDependencies wires the services over db. The S3 archive is only built
// when a bucket is configured.
func newDependencies(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Dependencies, error) {
	var archive services.DocumentArchive
	if cfg.ArchiveEnabled() {
		s3Archive, err := services.NewS3Archive(ctx, cfg)
		if err != nil {
			return nil, err
		}
		archive = s3Archive
	} else {
		logger.L().Info("AWS_S3_BUCKET not set, document archive disabled")
	}
	return buildDependencies(cfg, db, archive), nil
}

func buildDependencies(cfg *config.Config, db *gorm.DB, archive services.DocumentArchive) *Dependencies {
	store := services.NewStore(db)
	quotes := services.NewQuoteService(store)
	return &Dependencies{
		DB:               db,
		Auth:             services.NewAuthService(store, cfg),
		Workshops:        services.NewWorkshopService(store),
		Clients:          services.NewClientService(store),
		Vehicles:         services.NewVehicleService(store),
		TechnicalRecords: services.NewTechnicalRecordService(store),
		Quotes:           quotes,
		Documents:        services.NewDocumentService(quotes, services.NewPDFRenderer(), archive),
	}
}

func setupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.IsTest() {
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(
		logger.RequestID(),
		logger.GinMiddleware(logger.L()),
		gin.Recovery(),
		cors.New(corsConfig(cfg)),
	)

	authCtl := controllers.NewAuthController(deps.Auth)
	workshopCtl := controllers.NewWorkshopController(deps.Workshops)
	clientCtl := controllers.NewClientController(deps.Clients)
	vehicleCtl := controllers.NewVehicleController(deps.Vehicles)
	recordCtl := controllers.NewTechnicalRecordController(deps.TechnicalRecords)
	quoteCtl := controllers.NewQuoteController(deps.Quotes, deps.Documents)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(deps.DB))
		v1.GET("/public/workshops", workshopCtl.ListPublic)
		v1.POST("/auth/login", authCtl.Login)

		protected := v1.Group("")
		protected.Use(middleware.EnsureValidToken(cfg, deps.Auth))
		{
			protected.GET("/auth/me", authCtl.Me)

			protected.POST("/clients", clientCtl.Create)
			protected.GET("/clients", clientCtl.List)
			protected.PUT("/clients/:id", clientCtl.Update)
			protected.DELETE("/clients/:id", clientCtl.Delete)

			protected.POST("/vehicles", vehicleCtl.Create)
			protected.GET("/vehicles", vehicleCtl.List)
			protected.PUT("/vehicles/:id", vehicleCtl.Update)
			protected.DELETE("/vehicles/:id", vehicleCtl.Delete)

			protected.POST("/quotes", quoteCtl.Create)
			protected.GET("/quotes", quoteCtl.List)
			protected.GET("/quotes/:id", quoteCtl.Get)
			protected.PUT("/quotes/:id", quoteCtl.Update)
			protected.DELETE("/quotes/:id", quoteCtl.Delete)
			protected.GET("/quotes/:id/pdf", quoteCtl.PDF)
			protected.POST("/quotes/:id/document", quoteCtl.ArchiveDocument)

			protected.POST("/technical-records", recordCtl.Create)
			protected.GET("/technical-records", recordCtl.List)
			protected.PUT("/technical-records/:id", recordCtl.Update)
			protected.DELETE("/technical-records/:id", recordCtl.Delete)
		}
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Disposition", logger.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Oficina API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the underlying SQL database to check connection
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

		// Ping the database to verify connection
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			logger.L().Error("database ping failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
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
			"dialect": db.Dialector.Name(),
			"tables":  tables,
		})
	}
}
