package http

import (
	"net/http"

	"lead-backend/internal/handlers"
	"lead-backend/internal/middleware"
	"lead-backend/internal/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	leadHandler *handlers.LeadHandler,
	leadStatusHandler *handlers.LeadStatusHandler,
	brokerHandler *handlers.BrokerHandler,
	distributionHandler *handlers.DistributionHandler,
	dashboardHandler *handlers.DashboardHandler,
	reportHandler *handlers.ReportHandler,
	webhookHandler *handlers.WebhookHandler,
	connectionHandler *handlers.WhatsAppConnectionHandler,
	systemSettingHandler *handlers.SystemSettingHandler,
	healthHandler *handlers.HealthHandler,
	hub *ws.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Public webhook routes - provider callbacks carry no JWT
	r.HandleFunc("/webhooks/whatsapp", webhookHandler.VerifyMeta).Methods("GET")
	r.HandleFunc("/webhooks/whatsapp", webhookHandler.MetaWebhook).Methods("POST")
	r.HandleFunc("/webhooks/maytapi", webhookHandler.MaytapiWebhook).Methods("POST")

	// WebSocket endpoint, token checked via query param inside the handler
	r.HandleFunc("/ws", hub.HandleWS)

	// Protected API routes - Users (admin only, except /me)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("/me", userHandler.Me).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.GetUser)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.UpdateUser)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.DeleteUser)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Leads (brokers see only their own)
	leadsAPI := r.PathPrefix("/api/leads").Subrouter()
	leadsAPI.Use(authMiddleware.Authenticate)
	leadsAPI.HandleFunc("", leadHandler.ListLeads).Methods("GET")
	leadsAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(leadHandler.CreateLead)).ServeHTTP).Methods("POST")
	leadsAPI.HandleFunc("/{id}", leadHandler.GetLead).Methods("GET")
	leadsAPI.HandleFunc("/{id}", leadHandler.UpdateLead).Methods("PUT")
	leadsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(leadHandler.DeleteLead)).ServeHTTP).Methods("DELETE")
	leadsAPI.HandleFunc("/{id}/distribute", authMiddleware.RequireRole("admin")(http.HandlerFunc(leadHandler.Distribute)).ServeHTTP).Methods("POST")
	leadsAPI.HandleFunc("/{id}/distributions", leadHandler.DistributionHistory).Methods("GET")

	// Protected API routes - Lead status catalog
	leadStatusesAPI := r.PathPrefix("/api/lead-statuses").Subrouter()
	leadStatusesAPI.Use(authMiddleware.Authenticate)
	leadStatusesAPI.HandleFunc("", leadStatusHandler.ListStatuses).Methods("GET")

	// Protected API routes - Brokers (admin only)
	brokersAPI := r.PathPrefix("/api/brokers").Subrouter()
	brokersAPI.Use(authMiddleware.Authenticate)
	brokersAPI.HandleFunc("", brokerHandler.ListBrokers).Methods("GET")
	brokersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(brokerHandler.CreateBroker)).ServeHTTP).Methods("POST")
	brokersAPI.HandleFunc("/reorder", authMiddleware.RequireRole("admin")(http.HandlerFunc(brokerHandler.Reorder)).ServeHTTP).Methods("PATCH")
	brokersAPI.HandleFunc("/{id}", brokerHandler.GetBroker).Methods("GET")
	brokersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(brokerHandler.UpdateBroker)).ServeHTTP).Methods("PUT")
	brokersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(brokerHandler.DeleteBroker)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Distribution ledger (admin only)
	distributionsAPI := r.PathPrefix("/api/distributions").Subrouter()
	distributionsAPI.Use(authMiddleware.Authenticate)
	distributionsAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(distributionHandler.ListDistributions)).ServeHTTP).Methods("GET")

	// Protected API routes - Dashboard
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.Use(authMiddleware.Authenticate)
	dashboardAPI.HandleFunc("/stats", dashboardHandler.Stats).Methods("GET")

	// Protected API routes - Reports (admin only)
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/leads/excel", authMiddleware.RequireRole("admin")(http.HandlerFunc(reportHandler.GetLeadsExcel)).ServeHTTP).Methods("GET")
	reportsAPI.HandleFunc("/leads/pdf", authMiddleware.RequireRole("admin")(http.HandlerFunc(reportHandler.GetLeadsPDF)).ServeHTTP).Methods("GET")

	// Protected API routes - WhatsApp connections (admin only)
	connectionsAPI := r.PathPrefix("/api/whatsapp-connections").Subrouter()
	connectionsAPI.Use(authMiddleware.Authenticate)
	connectionsAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.ListConnections)).ServeHTTP).Methods("GET")
	connectionsAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.CreateConnection)).ServeHTTP).Methods("POST")
	connectionsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.GetConnection)).ServeHTTP).Methods("GET")
	connectionsAPI.HandleFunc("/{id}/send", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.SendMessage)).ServeHTTP).Methods("POST")
	connectionsAPI.HandleFunc("/{id}/qr", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.GetQRCode)).ServeHTTP).Methods("GET")
	connectionsAPI.HandleFunc("/{id}/status", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.RefreshStatus)).ServeHTTP).Methods("GET")
	connectionsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.UpdateConnection)).ServeHTTP).Methods("PUT")
	connectionsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(connectionHandler.DeleteConnection)).ServeHTTP).Methods("DELETE")

	// Protected API routes - System Settings
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.HandleFunc("", systemSettingHandler.ListSettings).Methods("GET")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.GetSetting).Methods("GET")
	settingsAPI.HandleFunc("/{key}", authMiddleware.RequireRole("admin")(http.HandlerFunc(systemSettingHandler.UpdateSetting)).ServeHTTP).Methods("PUT")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
