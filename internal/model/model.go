// Package model defines the plain, serializable domain types shared by the
// detection engine, the store, and the HTTP layer. Dates are time.Time in
// memory and RFC3339 strings at every storage and wire boundary.
package model

import "time"

// Frequency is an inferred or configured billing recurrence class.
type Frequency string

const (
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiweekly   Frequency = "biweekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semiannual"
	FrequencyAnnual     Frequency = "annual"
	FrequencyIrregular  Frequency = "irregular"
)

// SubscriptionStatus is the user-driven lifecycle state of a subscription.
// The only engine-driven transition is pending -> active on confirmation;
// cancelled is a soft terminal state and retains history.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusPaused    SubscriptionStatus = "paused"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusPending   SubscriptionStatus = "pending"
)

// DetectionMethod records how a subscription entered the model.
type DetectionMethod string

const (
	MethodKnownService    DetectionMethod = "known-service"
	MethodPatternAnalysis DetectionMethod = "pattern-analysis"
	MethodUserConfirmed   DetectionMethod = "user-confirmed"
)

// Transaction is an immutable, externally supplied transaction record.
// Amount is non-negative (positive = spend). PurchaseDate may precede the
// posting date; the engine does not enforce ordering between the two.
type Transaction struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	PurchaseDate time.Time `json:"purchaseDate,omitempty"`
	Merchant     string    `json:"merchant"`
	CategoryID   string    `json:"categoryId"`
	Amount       float64   `json:"amount"`
}

// NotificationPrefs controls renewal reminders for a subscription.
type NotificationPrefs struct {
	Enabled    bool  `json:"enabled"`
	DaysBefore int32 `json:"daysBefore"`
}

// Subscription is a user-owned, persisted recurring charge. TransactionIDs
// is the set of transactions considered part of this subscription; matching
// additionally falls back to MerchantPattern for transactions that arrived
// after the subscription was created.
type Subscription struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	MerchantPattern string             `json:"merchantPattern"`
	KnownServiceID  string             `json:"knownServiceId,omitempty"`
	Frequency       Frequency          `json:"frequency"`
	Amount          float64            `json:"amount"`
	AmountVariance  float64            `json:"amountVariance"`
	Currency        string             `json:"currency"`
	BillingDay      int32              `json:"billingDay,omitempty"`
	NextChargeDate  *time.Time         `json:"nextChargeDate,omitempty"`
	LastChargeDate  *time.Time         `json:"lastChargeDate,omitempty"`
	Status          SubscriptionStatus `json:"status"`
	DetectionMethod DetectionMethod    `json:"detectionMethod"`
	Confidence      float64            `json:"confidence"`
	CategoryID      string             `json:"categoryId,omitempty"`
	Notifications   NotificationPrefs  `json:"notifications"`
	TransactionIDs  []string           `json:"transactionIds,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// KnownService is a read-only registry entry for a popular subscription
// merchant, used to bootstrap high-confidence detection.
type KnownService struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Patterns   []string  `json:"patterns"`
	Frequency  Frequency `json:"frequency"`
	CategoryID string    `json:"categoryId"`
}

// Settings is the user-owned detection configuration snapshot. Mutating
// operations take a Settings value and return a new one; the caller owns
// the single mutable reference and commits replacements wholesale.
type Settings struct {
	EnableAutoDetection bool           `json:"enableAutoDetection"`
	MinimumOccurrences  int            `json:"minimumOccurrences"`
	ConfidenceThreshold float64        `json:"confidenceThreshold"`
	IgnoredPatterns     []string       `json:"ignoredPatterns,omitempty"`
	Subscriptions       []Subscription `json:"subscriptions,omitempty"`
}

// DefaultSettings returns the detection defaults for a new user.
func DefaultSettings() Settings {
	return Settings{
		EnableAutoDetection: true,
		MinimumOccurrences:  2,
		ConfidenceThreshold: 0.9,
	}
}

// Clone returns a deep copy of the settings snapshot so transforms never
// alias the slices of the snapshot they were derived from.
func (s Settings) Clone() Settings {
	out := s
	if s.IgnoredPatterns != nil {
		out.IgnoredPatterns = append([]string(nil), s.IgnoredPatterns...)
	}
	if s.Subscriptions != nil {
		out.Subscriptions = make([]Subscription, len(s.Subscriptions))
		for i, sub := range s.Subscriptions {
			out.Subscriptions[i] = sub.Clone()
		}
	}
	return out
}

// Clone returns a copy of the subscription with its own backing slices.
func (sub Subscription) Clone() Subscription {
	out := sub
	if sub.TransactionIDs != nil {
		out.TransactionIDs = append([]string(nil), sub.TransactionIDs...)
	}
	if sub.NextChargeDate != nil {
		d := *sub.NextChargeDate
		out.NextChargeDate = &d
	}
	if sub.LastChargeDate != nil {
		d := *sub.LastChargeDate
		out.LastChargeDate = &d
	}
	return out
}
