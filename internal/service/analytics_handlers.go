package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spendlens/backend/internal/analytics"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/recurring"
)

// handlePutTransactions replaces the user's transaction snapshot. This is
// the ingestion boundary: records arrive already normalized; the engine
// never parses raw import files.
func (s *EngineService) handlePutTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var txs []model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid transaction payload: %v", err))
		return
	}
	if err := s.store.PutTransactions(r.Context(), uid, txs); err != nil {
		log.Printf("[Service] put transactions for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to store transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(txs)})
}

func (s *EngineService) handleSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] list transactions for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	writeJSON(w, http.StatusOK, analytics.Summarize(txs))
}

func (s *EngineService) handleMonthlyBuckets(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] list transactions for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	buckets := analytics.MonthlyBuckets(txs)
	writeJSON(w, http.StatusOK, map[string]any{
		"buckets":   buckets,
		"dateRange": analytics.GetDateRange(txs),
	})
}

func (s *EngineService) handleYearlyBuckets(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] list transactions for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"buckets": analytics.YearlyBuckets(txs)})
}

// handleRunDetection runs one full detection pass over the current
// snapshots and commits the resulting settings document. Triggering
// policy (how often to re-run) belongs to the caller, not the engine.
func (s *EngineService) handleRunDetection(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] list transactions for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	settings, err := s.store.GetSettings(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] get settings for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	result := recurring.RunDetection(txs, settings, time.Now())

	if len(result.NewSubscriptions) > 0 {
		if err := s.store.PutSettings(r.Context(), uid, result.Settings); err != nil {
			log.Printf("[Service] put settings for %s: %v", uid, err)
			writeError(w, http.StatusInternalServerError, "failed to commit settings")
			return
		}
	}

	log.Printf("[Detection] completed for %s: patterns=%d candidates=%d",
		uid, len(result.Patterns), len(result.NewSubscriptions))
	writeJSON(w, http.StatusOK, result)
}
