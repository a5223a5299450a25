package recurring

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spendlens/backend/internal/merchant"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/stats"
)

// knownServiceConfidence is the fixed score assigned to registry matches.
// The caller auto-confirms candidates at or above its configured floor.
const knownServiceConfidence = 0.95

// knownServices is the curated registry of popular subscription merchants
// with their expected billing frequency and default category.
var knownServices = []model.KnownService{
	{ID: "netflix", Name: "Netflix", Patterns: []string{"netflix"}, Frequency: model.FrequencyMonthly, CategoryID: "entertainment"},
	{ID: "spotify", Name: "Spotify", Patterns: []string{"spotify"}, Frequency: model.FrequencyMonthly, CategoryID: "entertainment"},
	{ID: "disney-plus", Name: "Disney+", Patterns: []string{"disney+", "disney plus", "disneyplus"}, Frequency: model.FrequencyMonthly, CategoryID: "entertainment"},
	{ID: "hulu", Name: "Hulu", Patterns: []string{"hulu"}, Frequency: model.FrequencyMonthly, CategoryID: "entertainment"},
	{ID: "hbo-max", Name: "HBO Max", Patterns: []string{"hbo max", "hbomax", "max.com"}, Frequency: model.FrequencyMonthly, CategoryID: "entertainment"},
	{ID: "youtube-premium", Name: "YouTube Premium", Patterns: []string{"youtube premium", "youtubepremium"}, Frequency: model.FrequencyMonthly, CategoryID: "entertainment"},
	{ID: "amazon-prime", Name: "Amazon Prime", Patterns: []string{"amazon prime", "amzn prime", "prime video"}, Frequency: model.FrequencyAnnual, CategoryID: "shopping"},
	{ID: "apple-services", Name: "Apple Services", Patterns: []string{"apple.com/bill", "apple services", "itunes.com"}, Frequency: model.FrequencyMonthly, CategoryID: "software"},
	{ID: "google-one", Name: "Google One", Patterns: []string{"google one", "google storage"}, Frequency: model.FrequencyMonthly, CategoryID: "software"},
	{ID: "icloud", Name: "iCloud", Patterns: []string{"icloud"}, Frequency: model.FrequencyMonthly, CategoryID: "software"},
	{ID: "dropbox", Name: "Dropbox", Patterns: []string{"dropbox"}, Frequency: model.FrequencyAnnual, CategoryID: "software"},
	{ID: "adobe", Name: "Adobe Creative Cloud", Patterns: []string{"adobe"}, Frequency: model.FrequencyMonthly, CategoryID: "software"},
	{ID: "audible", Name: "Audible", Patterns: []string{"audible"}, Frequency: model.FrequencyMonthly, CategoryID: "entertainment"},
	{ID: "nytimes", Name: "New York Times", Patterns: []string{"nytimes", "ny times", "new york times"}, Frequency: model.FrequencyMonthly, CategoryID: "news"},
	{ID: "github", Name: "GitHub", Patterns: []string{"github"}, Frequency: model.FrequencyMonthly, CategoryID: "software"},
	{ID: "planet-fitness", Name: "Planet Fitness", Patterns: []string{"planet fitness", "planet fit"}, Frequency: model.FrequencyMonthly, CategoryID: "health"},
}

// KnownServices returns the read-only service registry.
func KnownServices() []model.KnownService {
	return knownServices
}

// DetectKnownServices matches transactions against the service registry
// and synthesizes candidate subscriptions for services with at least
// minimumOccurrences charges. Services already claimed by an existing
// subscription or listed in ignoredPatterns are skipped.
func DetectKnownServices(txs []model.Transaction, existing []model.Subscription, ignored []string, settings model.Settings, now time.Time) []model.Subscription {
	minOccurrences := settings.MinimumOccurrences
	if minOccurrences < 1 {
		minOccurrences = 2
	}

	claimed := make(map[string]bool)
	for _, sub := range existing {
		claimed[merchant.Canonicalize(sub.MerchantPattern)] = true
		if sub.KnownServiceID != "" {
			claimed["service:"+sub.KnownServiceID] = true
		}
	}
	ignoredSet := make(map[string]bool)
	for _, p := range ignored {
		ignoredSet[merchant.Canonicalize(p)] = true
	}

	var candidates []model.Subscription
	for _, svc := range knownServices {
		var matched []model.Transaction
		for _, tx := range txs {
			if matchesService(svc, tx.Merchant) {
				matched = append(matched, tx)
			}
		}
		if len(matched) < minOccurrences {
			continue
		}

		pattern := merchant.Canonicalize(matched[0].Merchant)
		if claimed[pattern] || claimed["service:"+svc.ID] || ignoredSet[pattern] {
			continue
		}

		sort.Slice(matched, func(i, j int) bool {
			return matched[i].Date.Before(matched[j].Date)
		})
		amounts := make([]float64, len(matched))
		ids := make([]string, len(matched))
		for i, tx := range matched {
			amounts[i] = tx.Amount
			ids[i] = tx.ID
		}
		last := matched[len(matched)-1].Date
		next := NextChargeDate(last, svc.Frequency)

		candidates = append(candidates, model.Subscription{
			ID:              uuid.New().String(),
			Name:            svc.Name,
			MerchantPattern: pattern,
			KnownServiceID:  svc.ID,
			Frequency:       svc.Frequency,
			Amount:          stats.Mean(amounts),
			AmountVariance:  stats.StdDev(amounts),
			Currency:        "USD",
			BillingDay:      int32(modalDayOfMonth(matched)),
			NextChargeDate:  &next,
			LastChargeDate:  &last,
			Status:          model.StatusPending,
			DetectionMethod: model.MethodKnownService,
			Confidence:      knownServiceConfidence,
			CategoryID:      svc.CategoryID,
			TransactionIDs:  ids,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return candidates
}

func matchesService(svc model.KnownService, rawMerchant string) bool {
	lower := strings.ToLower(rawMerchant)
	for _, p := range svc.Patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
