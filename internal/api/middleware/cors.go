package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// ledgerMethods are the verbs the ledger API routes on.
var ledgerMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodOptions,
}

// NewCORS returns the CORS handler for the ledger API.
// The ledger is cookie-less, so credentials are never allowed.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: ledgerMethods,
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}
