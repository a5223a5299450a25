package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spendlens/backend/internal/model"
)

// FirestoreStore implements Store using Firestore. Documents live under
// users/{uid}; dates cross the storage boundary as RFC3339 strings and
// are native time values everywhere else.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{client: client}
}

const settingsDocID = "detection"

// transactionDoc is the Firestore shape of a transaction.
type transactionDoc struct {
	ID           string  `firestore:"id"`
	Date         string  `firestore:"date"`
	PurchaseDate string  `firestore:"purchaseDate,omitempty"`
	Merchant     string  `firestore:"merchant"`
	CategoryID   string  `firestore:"categoryId"`
	Amount       float64 `firestore:"amount"`
}

// subscriptionDoc is the Firestore shape of a subscription.
type subscriptionDoc struct {
	ID              string   `firestore:"id"`
	Name            string   `firestore:"name"`
	MerchantPattern string   `firestore:"merchantPattern"`
	KnownServiceID  string   `firestore:"knownServiceId,omitempty"`
	Frequency       string   `firestore:"frequency"`
	Amount          float64  `firestore:"amount"`
	AmountVariance  float64  `firestore:"amountVariance"`
	Currency        string   `firestore:"currency"`
	BillingDay      int32    `firestore:"billingDay"`
	NextChargeDate  string   `firestore:"nextChargeDate,omitempty"`
	LastChargeDate  string   `firestore:"lastChargeDate,omitempty"`
	Status          string   `firestore:"status"`
	DetectionMethod string   `firestore:"detectionMethod"`
	Confidence      float64  `firestore:"confidence"`
	CategoryID      string   `firestore:"categoryId,omitempty"`
	NotifyEnabled   bool     `firestore:"notifyEnabled"`
	NotifyDays      int32    `firestore:"notifyDaysBefore"`
	TransactionIDs  []string `firestore:"transactionIds,omitempty"`
	CreatedAt       string   `firestore:"createdAt"`
	UpdatedAt       string   `firestore:"updatedAt"`
}

// settingsDoc is the Firestore shape of the settings document.
type settingsDoc struct {
	EnableAutoDetection bool              `firestore:"enableAutoDetection"`
	MinimumOccurrences  int               `firestore:"minimumOccurrences"`
	ConfidenceThreshold float64           `firestore:"confidenceThreshold"`
	IgnoredPatterns     []string          `firestore:"ignoredPatterns,omitempty"`
	Subscriptions       []subscriptionDoc `firestore:"subscriptions,omitempty"`
}

func (s *FirestoreStore) userDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(userID)
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	iter := s.userDoc(userID).Collection("transactions").OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var txs []model.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}
		var d transactionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse transaction %s: %w", doc.Ref.ID, err)
		}
		tx, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction %s: %w", doc.Ref.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *FirestoreStore) PutTransactions(ctx context.Context, userID string, txs []model.Transaction) error {
	col := s.userDoc(userID).Collection("transactions")
	bw := s.client.BulkWriter(ctx)
	jobs := make([]bulkWriteResult, 0, len(txs))
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		job, err := bw.Set(col.Doc(tx.ID), toTransactionDoc(tx))
		if err != nil {
			return fmt.Errorf("failed to enqueue transaction %s: %w", tx.ID, err)
		}
		jobs = append(jobs, job)
		ids = append(ids, tx.ID)
	}
	bw.End()
	return awaitBulkWrites(jobs, ids)
}

// bulkWriteResult is the awaitable side of a BulkWriter job.
type bulkWriteResult interface {
	Results() (*firestore.WriteResult, error)
}

// awaitBulkWrites surfaces the first server-side write failure. The error
// from enqueueing only covers malformed requests; RPC outcomes are reported
// exclusively through the per-job results.
func awaitBulkWrites(jobs []bulkWriteResult, ids []string) error {
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", ids[i], err)
		}
	}
	return nil
}

func (s *FirestoreStore) GetSettings(ctx context.Context, userID string) (model.Settings, error) {
	doc, err := s.userDoc(userID).Collection("settings").Doc(settingsDocID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	var d settingsDoc
	if err := doc.DataTo(&d); err != nil {
		return model.Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return d.toModel()
}

func (s *FirestoreStore) PutSettings(ctx context.Context, userID string, settings model.Settings) error {
	_, err := s.userDoc(userID).Collection("settings").Doc(settingsDocID).Set(ctx, toSettingsDoc(settings))
	if err != nil {
		return fmt.Errorf("failed to put settings: %w", err)
	}
	return nil
}

func toTransactionDoc(tx model.Transaction) transactionDoc {
	d := transactionDoc{
		ID:         tx.ID,
		Date:       tx.Date.Format(time.RFC3339),
		Merchant:   tx.Merchant,
		CategoryID: tx.CategoryID,
		Amount:     tx.Amount,
	}
	if !tx.PurchaseDate.IsZero() {
		d.PurchaseDate = tx.PurchaseDate.Format(time.RFC3339)
	}
	return d
}

func (d transactionDoc) toModel() (model.Transaction, error) {
	date, err := time.Parse(time.RFC3339, d.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", d.Date, err)
	}
	tx := model.Transaction{
		ID:         d.ID,
		Date:       date,
		Merchant:   d.Merchant,
		CategoryID: d.CategoryID,
		Amount:     d.Amount,
	}
	if d.PurchaseDate != "" {
		purchase, err := time.Parse(time.RFC3339, d.PurchaseDate)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("invalid purchase date %q: %w", d.PurchaseDate, err)
		}
		tx.PurchaseDate = purchase
	}
	return tx, nil
}

func toSettingsDoc(settings model.Settings) settingsDoc {
	d := settingsDoc{
		EnableAutoDetection: settings.EnableAutoDetection,
		MinimumOccurrences:  settings.MinimumOccurrences,
		ConfidenceThreshold: settings.ConfidenceThreshold,
		IgnoredPatterns:     settings.IgnoredPatterns,
	}
	for _, sub := range settings.Subscriptions {
		d.Subscriptions = append(d.Subscriptions, toSubscriptionDoc(sub))
	}
	return d
}

func (d settingsDoc) toModel() (model.Settings, error) {
	settings := model.Settings{
		EnableAutoDetection: d.EnableAutoDetection,
		MinimumOccurrences:  d.MinimumOccurrences,
		ConfidenceThreshold: d.ConfidenceThreshold,
		IgnoredPatterns:     d.IgnoredPatterns,
	}
	for _, sd := range d.Subscriptions {
		sub, err := sd.toModel()
		if err != nil {
			return model.Settings{}, err
		}
		settings.Subscriptions = append(settings.Subscriptions, sub)
	}
	return settings, nil
}

func toSubscriptionDoc(sub model.Subscription) subscriptionDoc {
	d := subscriptionDoc{
		ID:              sub.ID,
		Name:            sub.Name,
		MerchantPattern: sub.MerchantPattern,
		KnownServiceID:  sub.KnownServiceID,
		Frequency:       string(sub.Frequency),
		Amount:          sub.Amount,
		AmountVariance:  sub.AmountVariance,
		Currency:        sub.Currency,
		BillingDay:      sub.BillingDay,
		Status:          string(sub.Status),
		DetectionMethod: string(sub.DetectionMethod),
		Confidence:      sub.Confidence,
		CategoryID:      sub.CategoryID,
		NotifyEnabled:   sub.Notifications.Enabled,
		NotifyDays:      sub.Notifications.DaysBefore,
		TransactionIDs:  sub.TransactionIDs,
		CreatedAt:       sub.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       sub.UpdatedAt.Format(time.RFC3339),
	}
	if sub.NextChargeDate != nil {
		d.NextChargeDate = sub.NextChargeDate.Format(time.RFC3339)
	}
	if sub.LastChargeDate != nil {
		d.LastChargeDate = sub.LastChargeDate.Format(time.RFC3339)
	}
	return d
}

func (d subscriptionDoc) toModel() (model.Subscription, error) {
	createdAt, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("subscription %s: invalid createdAt: %w", d.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339, d.UpdatedAt)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("subscription %s: invalid updatedAt: %w", d.ID, err)
	}
	sub := model.Subscription{
		ID:              d.ID,
		Name:            d.Name,
		MerchantPattern: d.MerchantPattern,
		KnownServiceID:  d.KnownServiceID,
		Frequency:       model.Frequency(d.Frequency),
		Amount:          d.Amount,
		AmountVariance:  d.AmountVariance,
		Currency:        d.Currency,
		BillingDay:      d.BillingDay,
		Status:          model.SubscriptionStatus(d.Status),
		DetectionMethod: model.DetectionMethod(d.DetectionMethod),
		Confidence:      d.Confidence,
		CategoryID:      d.CategoryID,
		Notifications:   model.NotificationPrefs{Enabled: d.NotifyEnabled, DaysBefore: d.NotifyDays},
		TransactionIDs:  d.TransactionIDs,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
	if d.NextChargeDate != "" {
		next, err := time.Parse(time.RFC3339, d.NextChargeDate)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("subscription %s: invalid nextChargeDate: %w", d.ID, err)
		}
		sub.NextChargeDate = &next
	}
	if d.LastChargeDate != "" {
		last, err := time.Parse(time.RFC3339, d.LastChargeDate)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("subscription %s: invalid lastChargeDate: %w", d.ID, err)
		}
		sub.LastChargeDate = &last
	}
	return sub, nil
}
