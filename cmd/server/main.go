package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"lead-backend/internal/auth"
	"lead-backend/internal/cache"
	"lead-backend/internal/config"
	"lead-backend/internal/database"
	"lead-backend/internal/db"
	"lead-backend/internal/distribution"
	"lead-backend/internal/handlers"
	"lead-backend/internal/health"
	h "lead-backend/internal/http"
	"lead-backend/internal/middleware"
	"lead-backend/internal/monitoring"
	"lead-backend/internal/repositories"
	"lead-backend/internal/services"
	"lead-backend/internal/storage"
	"lead-backend/internal/whatsapp"
	"lead-backend/internal/ws"
	"lead-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	monitoringPort := flag.Int("monitoring-port", 9090, "Monitoring server port")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	// Uses embedded migrations for standalone binary operation
	log.Println("Running database migrations...")
	migrator := database.NewMigratorWithFS(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Start monitoring server in background
	go monitoring.NewMonitoringServer(pool, *monitoringPort).Start()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	brokerRepo := repositories.NewBrokerRepository(pool)
	leadRepo := repositories.NewLeadRepository(pool)
	leadStatusRepo := repositories.NewLeadStatusRepository(pool)
	distRepo := repositories.NewDistributionRepository(pool)
	connRepo := repositories.NewWhatsAppConnectionRepository(pool)
	systemSettingRepo := repositories.NewSystemSettingRepository(pool)

	// Distribution engine runs over its own transactional store
	distStore := repositories.NewDistributionStore(pool)
	engine := distribution.NewEngine(distStore)

	// WebSocket hub for dashboard notifications
	hub := ws.NewHub(jwtManager)
	go hub.Run()

	// Optional R2 archive for report exports
	var archive *storage.R2Client
	if cfg.R2.Enabled {
		var err error
		archive, err = storage.NewR2Client(cfg)
		if err != nil {
			log.Printf("[R2] Archive disabled: %v", err)
			archive = nil
		} else {
			log.Println("[R2] Report archive enabled")
		}
	}

	// Outbound WhatsApp provider, nil when unconfigured
	provider := whatsapp.CreateProvider(
		cfg.WhatsApp.MaytapiProductID,
		cfg.WhatsApp.MaytapiToken,
		cfg.WhatsApp.MaytapiPhoneID,
		cfg.WhatsApp.MetaToken,
		cfg.WhatsApp.MetaPhoneNumberID,
	)
	if provider != nil {
		log.Printf("[WhatsApp] Outbound provider: %s", provider.GetName())
	} else {
		log.Println("[WhatsApp] No outbound provider configured, auto-responses disabled")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	leadService := services.NewLeadService(leadRepo, distRepo, userRepo, systemSettingRepo, engine, hub)
	brokerService := services.NewBrokerService(brokerRepo, userRepo, distRepo)
	statsService := services.NewStatsService(leadRepo, brokerRepo, distRepo)
	reportService := services.NewReportService(leadRepo, distRepo, archive)
	systemSettingService := services.NewSystemSettingService(systemSettingRepo)
	whatsappService := services.NewWhatsAppService(connRepo, leadRepo, systemSettingRepo, leadService, provider, cfg.WhatsApp.WebhookBaseURL)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	leadHandler := handlers.NewLeadHandler(leadService)
	leadStatusHandler := handlers.NewLeadStatusHandler(leadStatusRepo)
	brokerHandler := handlers.NewBrokerHandler(brokerService)
	distributionHandler := handlers.NewDistributionHandler(distRepo)
	dashboardHandler := handlers.NewDashboardHandler(statsService)
	reportHandler := handlers.NewReportHandler(reportService)
	webhookHandler := handlers.NewWebhookHandler(whatsappService, cfg.WhatsApp.VerifyToken)
	connectionHandler := handlers.NewWhatsAppConnectionHandler(whatsappService)
	systemSettingHandler := handlers.NewSystemSettingHandler(systemSettingService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		userHandler,
		leadHandler,
		leadStatusHandler,
		brokerHandler,
		distributionHandler,
		dashboardHandler,
		reportHandler,
		webhookHandler,
		connectionHandler,
		systemSettingHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	// Wrap with panic recovery, request metrics, and CORS
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
