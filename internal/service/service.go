// Package service exposes the detection and analytics engine over a small
// JSON HTTP API. Handlers load the user's snapshots from the store, call
// the pure engine, and encode the result; all state changes go through
// whole-snapshot replacement of the settings document.
package service

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/spendlens/backend/internal/store"
)

// EngineService wires the store to the HTTP handlers.
type EngineService struct {
	store store.Store
}

// NewEngineService creates the service around a store implementation.
func NewEngineService(st store.Store) *EngineService {
	return &EngineService{store: st}
}

// Routes returns the HTTP handler for the service API.
func (s *EngineService) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("PUT /v1/transactions", s.handlePutTransactions)

	mux.HandleFunc("GET /v1/analytics/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/analytics/monthly", s.handleMonthlyBuckets)
	mux.HandleFunc("GET /v1/analytics/yearly", s.handleYearlyBuckets)

	mux.HandleFunc("POST /v1/detection/run", s.handleRunDetection)
	mux.HandleFunc("POST /v1/patterns/confirm", s.handleConfirmPattern)
	mux.HandleFunc("POST /v1/patterns/dismiss", s.handleDismissPattern)

	mux.HandleFunc("GET /v1/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("PUT /v1/subscriptions/{id}", s.handleUpdateSubscription)
	mux.HandleFunc("DELETE /v1/subscriptions/{id}", s.handleRemoveSubscription)
	mux.HandleFunc("POST /v1/subscriptions/{id}/confirm", s.handleConfirmSubscription)
	mux.HandleFunc("POST /v1/subscriptions/{id}/cancel", s.handleCancelSubscription)
	mux.HandleFunc("GET /v1/subscriptions/{id}/analytics", s.handleSubscriptionAnalytics)
	mux.HandleFunc("GET /v1/subscriptions/{id}/price-changes", s.handlePriceChanges)

	mux.HandleFunc("GET /v1/renewals", s.handleRenewals)

	return mux
}

// userID resolves the caller from the X-User-ID header. Authentication
// proper is upstream; an empty header is rejected.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Service] failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// requireUser writes a 401 and returns false when no user is identified.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return "", false
	}
	return uid, true
}
