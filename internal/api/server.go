package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, resolver HoldingsResolver, refresher Refresher, adminAPIKey string) *http.Server {
	handler := NewHandler(resolver)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/overlap", handler.GetOverlap)
	mux.HandleFunc("GET /api/v1/overlap/export", handler.ExportOverlap)
	mux.HandleFunc("GET /api/v1/funds/{symbol}", handler.GetFund)

	refreshHandler := http.HandlerFunc(NewRefreshHandler(refresher).RefreshFunds)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/funds/refresh", requireAuth(adminAPIKey, refreshHandler))
	} else {
		mux.Handle("POST /api/v1/funds/refresh", refreshHandler)
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
