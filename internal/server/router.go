package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/handlers"
)

type RouterConfig struct {
	MaxMultipartMemory int64

	HealthcheckHandler *handlers.HealthcheckHandler
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     gin.HandlerFunc
	CatalogHandler     *handlers.CatalogHandler
	RequestHandler     *handlers.RequestHandler
	IncidentHandler    *handlers.IncidentHandler
	FulfilledHandler   *handlers.FulfilledHandler
	PhotoHandler       *handlers.PhotoHandler
	SSEHandler         *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	if cfg.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = cfg.MaxMultipartMemory
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/logout", cfg.AuthHandler.Logout)
	router.POST("/reset-credentials", cfg.AuthHandler.ResetCredentials)

	router.GET("/photos/catalog/:name", cfg.PhotoHandler.CatalogPhoto)
	router.GET("/photos/requests/:name", cfg.PhotoHandler.RequestPhoto)

	api := router.Group("/api")
	{
		// Catalog reads are open to the shop floor.
		api.GET("/items", cfg.CatalogHandler.List)
		api.GET("/items/:id", cfg.CatalogHandler.Get)
		api.GET("/items/code/:code", cfg.CatalogHandler.GetByCode)
		api.GET("/items/code-exists", cfg.CatalogHandler.CodeExists)
		api.GET("/supplies", cfg.CatalogHandler.ListSupplies)
		api.GET("/machines", cfg.CatalogHandler.Machines)

		// Anyone on the floor can submit a request.
		api.POST("/requests", cfg.RequestHandler.Submit)

		// Incidents can be reported without a session.
		api.POST("/incidents", cfg.IncidentHandler.Create)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware)
	{
		protected.GET("/session", cfg.AuthHandler.Session)

		protected.POST("/items", cfg.CatalogHandler.Register)
		protected.PUT("/items/:id", cfg.CatalogHandler.Update)
		protected.DELETE("/items/:id", cfg.CatalogHandler.Delete)

		protected.GET("/requests", cfg.RequestHandler.List)
		protected.GET("/requests/:id", cfg.RequestHandler.Get)
		protected.PUT("/requests/:id", cfg.RequestHandler.Fulfill)
		protected.POST("/requests/:id/reopen", cfg.RequestHandler.Reopen)
		protected.POST("/requests/:id/remove-photo", cfg.RequestHandler.RemovePhoto)
		protected.DELETE("/requests/:id", cfg.RequestHandler.Delete)

		protected.GET("/incidents", cfg.IncidentHandler.List)
		protected.GET("/incidents/:id", cfg.IncidentHandler.Get)
		protected.PUT("/incidents/:id", cfg.IncidentHandler.SetStatus)
		protected.POST("/incidents/:id/reopen", cfg.IncidentHandler.Reopen)
		protected.DELETE("/incidents/:id", cfg.IncidentHandler.Delete)

		protected.GET("/fulfilled", cfg.FulfilledHandler.List)
		protected.GET("/fulfilled/report", cfg.FulfilledHandler.Report)

		protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	}

	return router
}
