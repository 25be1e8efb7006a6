package middleware

import (
	"net/http"

	"lead-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS builds the cross-origin layer from the configured origins.
// Credentials stay on so the dashboard can send its auth header.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler
}
