// Package api implements the notebook REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/cors"
)

// DefaultCORSOrigin is the web frontend's development origin.
const DefaultCORSOrigin = "http://localhost:3000"

// CORSMiddleware allows the given origins with any method and header.
// An empty list falls back to DefaultCORSOrigin.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{DefaultCORSOrigin}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
