package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/recurring"
	"github.com/spendlens/backend/internal/subscription"
)

// defaultPriceChangeThreshold is the percent change that counts as a
// price change when the caller does not override it.
const defaultPriceChangeThreshold = 5.0

// defaultRenewalHorizonDays bounds the renewal forecast window.
const defaultRenewalHorizonDays = 30

func (s *EngineService) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	settings, err := s.store.GetSettings(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] get settings for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	subs := settings.Subscriptions
	if subs == nil {
		subs = []model.Subscription{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

// applySettingsTransform runs a pure settings transformation and commits
// the replacement snapshot when it applies.
func (s *EngineService) applySettingsTransform(w http.ResponseWriter, r *http.Request, transform func(model.Settings) (model.Settings, bool)) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	settings, err := s.store.GetSettings(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] get settings for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	updated, applied := transform(settings)
	if !applied {
		writeError(w, http.StatusNotFound, "subscription not found or transition not allowed")
		return
	}
	if err := s.store.PutSettings(r.Context(), uid, updated); err != nil {
		log.Printf("[Service] put settings for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to commit settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": updated.Subscriptions})
}

func (s *EngineService) handleConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	subID := r.PathValue("id")
	s.applySettingsTransform(w, r, func(settings model.Settings) (model.Settings, bool) {
		return subscription.Confirm(settings, subID, time.Now())
	})
}

func (s *EngineService) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	subID := r.PathValue("id")
	s.applySettingsTransform(w, r, func(settings model.Settings) (model.Settings, bool) {
		return subscription.Cancel(settings, subID, time.Now())
	})
}

func (s *EngineService) handleRemoveSubscription(w http.ResponseWriter, r *http.Request) {
	subID := r.PathValue("id")
	s.applySettingsTransform(w, r, func(settings model.Settings) (model.Settings, bool) {
		return subscription.Remove(settings, subID)
	})
}

func (s *EngineService) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	subID := r.PathValue("id")
	var sub model.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid subscription payload: %v", err))
		return
	}
	sub.ID = subID
	s.applySettingsTransform(w, r, func(settings model.Settings) (model.Settings, bool) {
		return subscription.Update(settings, sub, time.Now())
	})
}

type confirmPatternRequest struct {
	Pattern recurring.Pattern `json:"pattern"`
	Name    string            `json:"name"`
}

func (s *EngineService) handleConfirmPattern(w http.ResponseWriter, r *http.Request) {
	var req confirmPatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid pattern payload: %v", err))
		return
	}
	if req.Pattern.NormalizedPattern == "" {
		writeError(w, http.StatusBadRequest, "pattern.normalizedPattern is required")
		return
	}
	s.applySettingsTransform(w, r, func(settings model.Settings) (model.Settings, bool) {
		return subscription.ConfirmPattern(settings, req.Pattern, req.Name, time.Now()), true
	})
}

type dismissPatternRequest struct {
	Pattern string `json:"pattern"`
}

func (s *EngineService) handleDismissPattern(w http.ResponseWriter, r *http.Request) {
	var req dismissPatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}
	if req.Pattern == "" {
		writeError(w, http.StatusBadRequest, "pattern is required")
		return
	}
	s.applySettingsTransform(w, r, func(settings model.Settings) (model.Settings, bool) {
		return subscription.DismissPattern(settings, req.Pattern), true
	})
}

// findSubscription loads the settings snapshot and resolves one
// subscription by id.
func (s *EngineService) findSubscription(r *http.Request, uid, subID string) (model.Subscription, model.Settings, error) {
	settings, err := s.store.GetSettings(r.Context(), uid)
	if err != nil {
		return model.Subscription{}, model.Settings{}, err
	}
	for _, sub := range settings.Subscriptions {
		if sub.ID == subID {
			return sub, settings, nil
		}
	}
	return model.Subscription{}, settings, fmt.Errorf("subscription %s: not found", subID)
}

func (s *EngineService) handleSubscriptionAnalytics(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	sub, _, err := s.findSubscription(r, uid, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] list transactions for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	writeJSON(w, http.StatusOK, subscription.CalculateAnalytics(sub, txs))
}

func (s *EngineService) handlePriceChanges(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	sub, _, err := s.findSubscription(r, uid, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	threshold := defaultPriceChangeThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a non-negative number")
			return
		}
		threshold = parsed
	}
	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] list transactions for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	changes := subscription.DetectPriceChanges(sub, txs, threshold)
	if changes == nil {
		changes = []subscription.PriceChange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

func (s *EngineService) handleRenewals(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	horizon := defaultRenewalHorizonDays
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "horizon must be a positive integer")
			return
		}
		horizon = parsed
	}
	settings, err := s.store.GetSettings(r.Context(), uid)
	if err != nil {
		log.Printf("[Service] get settings for %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	renewals := subscription.UpcomingRenewals(settings.Subscriptions, horizon, time.Now())
	if renewals == nil {
		renewals = []subscription.Renewal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"renewals": renewals})
}
