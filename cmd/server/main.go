package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/handlers"
	"github.com/monban-project/monban/internal/infrastructure/config"
	"github.com/monban-project/monban/internal/infrastructure/database"
	"github.com/monban-project/monban/internal/infrastructure/metrics"
	"github.com/monban-project/monban/internal/repositories"
	pgrepo "github.com/monban-project/monban/internal/repositories/postgres"
	"github.com/monban-project/monban/internal/services"
	"github.com/monban-project/monban/internal/services/authorization"
	"github.com/monban-project/monban/pkg/cache/memorycache"
)

const defaultEnv = "dev"

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	log.Printf("Connected to database: %s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database)

	// Permission catalogue
	catalogue := entities.DefaultCatalogue()

	// Initialize repositories
	datasourceRepo := pgrepo.NewPostgresDatasourceRepository(pg.DB)
	connectionRepo := pgrepo.NewPostgresConnectionRepository(pg.DB)
	requestRepo := pgrepo.NewPostgresRequestRepository(pg.DB)
	commentRepo := pgrepo.NewPostgresCommentRepository(pg.DB)
	grantRepo := pgrepo.NewPostgresGrantRepository(pg.DB, catalogue)
	principalRepo := pgrepo.NewPostgresPrincipalRepository(pg.DB)

	// Object resolution, optionally fronted by the in-memory cache.
	// Only resolved objects are cached; decisions and grants never are.
	var objects repositories.ObjectResolver = pgrepo.NewObjectResolver(pg.DB)
	var invalidator repositories.ObjectInvalidator

	collector := metrics.NewCollector()

	if cfg.Cache.Enabled {
		mc, err := memorycache.New(&memorycache.Config{
			MaxSizeBytes:  cfg.Cache.MaxMemoryBytes,
			EnableMetrics: cfg.Cache.Metrics,
		})
		if err != nil {
			log.Fatalf("Failed to create object cache: %v", err)
		}
		defer mc.Close()

		collector.SetCache(mc)
		caching := repositories.NewCachingObjectResolver(
			objects, mc, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		objects = caching
		invalidator = caching
		log.Printf("Object cache enabled: ttl=%ds max=%d bytes",
			cfg.Cache.TTLSeconds, cfg.Cache.MaxMemoryBytes)
	}

	// Initialize the authorization engine
	vetoes, err := authorization.NewVetoEngine()
	if err != nil {
		log.Fatalf("Failed to create veto engine: %v", err)
	}
	if err := authorization.RegisterDefaultVetoes(vetoes); err != nil {
		log.Fatalf("Failed to register veto rules: %v", err)
	}
	voter := authorization.NewGrantVoter()
	resolver := authorization.NewChainResolverWithVetoes(voter, vetoes)

	exporter := metrics.NewPrometheusExporter(collector)
	recorder := metrics.NewDecisionRecorder(collector, exporter)
	guard := authorization.NewGuardWithRecorder(resolver, objects, recorder)

	// Initialize services
	authService := services.NewAuthService(principalRepo, grantRepo)
	datasourceService := services.NewDatasourceService(datasourceRepo, guard, invalidator)
	connectionService := services.NewConnectionService(connectionRepo, guard, invalidator)
	requestService := services.NewRequestService(requestRepo, guard, invalidator)
	commentService := services.NewCommentService(commentRepo, guard)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware(collector, exporter))

	e.GET("/health", func(c echo.Context) error {
		if err := pg.HealthCheck(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1", handlers.RequireAuth(authService))
	handlers.NewDatasourceHandler(datasourceService).Register(api)
	handlers.NewConnectionHandler(connectionService).Register(api)
	handlers.NewRequestHandler(requestService).Register(api)
	handlers.NewCommentHandler(commentService).Register(api)

	// Metrics server on a separate port
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	// Refresh gauge metrics periodically
	gaugeTicker := time.NewTicker(10 * time.Second)
	defer gaugeTicker.Stop()
	go func() {
		for range gaugeTicker.C {
			exporter.Update()
		}
	}()

	serverErrors := make(chan error, 2)
	go func() {
		log.Printf("HTTP server listening on :%d", cfg.Server.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		log.Printf("Metrics server listening on :%d", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server shutdown error: %v", err)
		}

		if err := pg.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}

		log.Println("Shutdown complete")
	}
}
