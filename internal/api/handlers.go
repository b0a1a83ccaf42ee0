package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"PriceSentinel/internal/history"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/watchlist"
)

// Analyzer exposes the scheduler's latest results and on-demand cycle.
type Analyzer interface {
	Results() []model.AnalysisResult
	Result(itemID, platform string) (model.AnalysisResult, bool)
	RunPrimaryNow(ctx context.Context) []model.AnalysisResult
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	analyzer  Analyzer
	watchlist *watchlist.Store
	history   *history.Log
	metrics   http.Handler
}

// NewHandler creates a new Handler. metrics may be nil.
func NewHandler(a Analyzer, wl *watchlist.Store, hist *history.Log, metrics http.Handler) *Handler {
	return &Handler{
		analyzer:  a,
		watchlist: wl,
		history:   hist,
		metrics:   metrics,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetAllAnalyses handles GET /api/v1/analysis
func (h *Handler) GetAllAnalyses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.analyzer.Results())
}

// GetAnalysis handles GET /api/v1/analysis/{item}/{platform}
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, ok := h.analyzer.Result(vars["item"], vars["platform"])
	if !ok {
		http.Error(w, "no analysis for "+vars["item"]+"/"+vars["platform"], http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GetWatchlist handles GET /api/v1/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.watchlist.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.WatchlistEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// AddToWatchlist handles POST /api/v1/watchlist
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID   string `json:"item_id"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, added, err := h.watchlist.Add(r.Context(), req.ItemID, req.Platform)
	if errors.Is(err, watchlist.ErrInvalidEntry) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
		log.Printf("[INFO] watchlist add via API: %s/%s", entry.ItemID, entry.Platform)
	}
	respondJSON(w, status, entry)
}

// RemoveFromWatchlist handles DELETE /api/v1/watchlist/{item}/{platform}
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	removed, err := h.watchlist.Remove(r.Context(), vars["item"], vars["platform"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "not on watchlist", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportHistory handles GET /api/v1/history/{item}/{platform}.csv
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	prices, err := h.history.Load(r.Context(), vars["item"], vars["platform"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s_%s_history.csv"`, vars["item"], vars["platform"]))
	if err := history.WriteCSV(w, prices); err != nil {
		log.Printf("[ERROR] write csv: %v", err)
	}
}

// Refresh handles POST /api/v1/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	results := h.analyzer.RunPrimaryNow(r.Context())
	if results == nil {
		results = []model.AnalysisResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
