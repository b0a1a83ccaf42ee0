package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes.
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	if handler.metrics != nil {
		r.Handle("/metrics", handler.metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analysis", handler.GetAllAnalyses).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{item}/{platform}", handler.GetAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", handler.AddToWatchlist).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/{item}/{platform}", handler.RemoveFromWatchlist).Methods(http.MethodDelete)
	api.HandleFunc("/history/{item}/{platform}.csv", handler.ExportHistory).Methods(http.MethodGet)
	api.HandleFunc("/refresh", handler.Refresh).Methods(http.MethodPost)

	return r
}
