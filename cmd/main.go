package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tooltag/tooltag-backend/internal/config"
	"github.com/tooltag/tooltag-backend/internal/db"
	"github.com/tooltag/tooltag-backend/internal/handlers"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/middleware"
	"github.com/tooltag/tooltag-backend/internal/realtime/bus"
	"github.com/tooltag/tooltag-backend/internal/repos"
	"github.com/tooltag/tooltag-backend/internal/server"
	"github.com/tooltag/tooltag-backend/internal/services"
	"github.com/tooltag/tooltag-backend/internal/sse"
	"github.com/tooltag/tooltag-backend/internal/storage"
	"github.com/tooltag/tooltag-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	sessionTTL := utils.GetEnvAsInt("SESSION_TTL", 43200, log)
	adminUsername := utils.GetEnv("ADMIN_USERNAME", "ADMINISTRADOR", log)
	adminPassword := utils.GetEnv("ADMIN_PASSWORD", "admin", log)
	factoryUser := os.Getenv("FACTORY_USERNAME")
	factoryPass := os.Getenv("FACTORY_PASSWORD")
	chartFont := os.Getenv("CHART_FONT")

	// Config
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.SeedAdmin(adminUsername, adminPassword); err != nil {
		log.Error("Admin seed failed", "error", err)
		os.Exit(1)
	}
	gdb := dbService.DB()

	// Photo stores
	catalogPhotos, err := storage.NewPhotoStore(cfg.CatalogPhotoDir, cfg.AllowedExtensions, log)
	if err != nil {
		log.Error("Could not init catalog photo store", "error", err)
		os.Exit(1)
	}
	requestPhotos, err := storage.NewPhotoStore(cfg.RequestPhotoDir, cfg.AllowedExtensions, log)
	if err != nil {
		log.Error("Could not init request photo store", "error", err)
		os.Exit(1)
	}

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sseBus bus.Bus
	if os.Getenv("REDIS_ADDR") != "" {
		sseBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Warn("Redis SSE bus init failed; continuing with local hub only", "error", err)
			sseBus = nil
		} else {
			if err := sseBus.StartForwarder(rootCtx, sseHub.Broadcast); err != nil {
				log.Warn("Redis SSE forwarder failed; continuing with local hub only", "error", err)
				_ = sseBus.Close()
				sseBus = nil
			}
		}
	}
	notifier := services.NewNotifier(sseHub, sseBus, log)

	// Repos
	log.Info("Setting up Repos from main...")
	itemRepo := repos.NewCatalogItemRepo(gdb, log)
	compositionRepo := repos.NewCompositionRepo(gdb, log)
	deletedRepo := repos.NewDeletedItemRepo(gdb, log)
	cellRepo := repos.NewItemCellRepo(gdb, log)
	machineRepo := repos.NewItemMachineRepo(gdb, log)
	requestRepo := repos.NewSupplyRequestRepo(gdb, log)
	incidentRepo := repos.NewIncidentRepo(gdb, log)
	adminRepo := repos.NewAdminRepo(gdb, log)

	// Services
	log.Info("Setting up Services from main...")
	catalogService := services.NewCatalogService(gdb, log, itemRepo, compositionRepo, deletedRepo, cellRepo, machineRepo, requestRepo, catalogPhotos)
	requestService := services.NewRequestService(gdb, log, cfg, requestRepo, itemRepo, requestPhotos, notifier)
	incidentService := services.NewIncidentService(gdb, log, cfg, incidentRepo)
	fulfilledService := services.NewFulfilledService(log, cfg, requestRepo, incidentRepo)
	reportService := services.NewReportService(log, fulfilledService, requestPhotos, chartFont)
	authService := services.NewAuthService(gdb, log, adminRepo, services.AuthConfig{
		Secret:      jwtSecretKey,
		TTL:         time.Duration(sessionTTL) * time.Second,
		FactoryUser: factoryUser,
		FactoryPass: factoryPass,
	})

	// Handlers
	log.Info("Setting up handlers from main...")
	healthcheckHandler := handlers.NewHealthcheckHandler()
	authHandler := handlers.NewAuthHandler(log, authService)
	catalogHandler := handlers.NewCatalogHandler(log, catalogService)
	requestHandler := handlers.NewRequestHandler(log, requestService)
	incidentHandler := handlers.NewIncidentHandler(log, incidentService)
	fulfilledHandler := handlers.NewFulfilledHandler(log, fulfilledService, reportService)
	photoHandler := handlers.NewPhotoHandler(log, catalogPhotos, requestPhotos)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		MaxMultipartMemory: cfg.MaxUploadBytes,
		HealthcheckHandler: healthcheckHandler,
		AuthHandler:        authHandler,
		AuthMiddleware:     middleware.RequireAdmin(authService, log),
		CatalogHandler:     catalogHandler,
		RequestHandler:     requestHandler,
		IncidentHandler:    incidentHandler,
		FulfilledHandler:   fulfilledHandler,
		PhotoHandler:       photoHandler,
		SSEHandler:         sseHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if sseBus != nil {
			_ = sseBus.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
