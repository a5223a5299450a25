// Package store owns persistence for the engine's two external snapshots:
// the transaction collection and the user's detection settings document.
// The engine itself never performs I/O; callers load snapshots here, run
// the pure computations, and commit replacement settings wholesale.
package store

import (
	"context"
	"errors"

	"github.com/spendlens/backend/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations used by the service layer.
type Store interface {
	// Transaction snapshot operations
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	PutTransactions(ctx context.Context, userID string, txs []model.Transaction) error

	// Settings snapshot operations. GetSettings returns the detection
	// defaults for users without a stored document. PutSettings replaces
	// the whole document (copy-on-write, no partial updates).
	GetSettings(ctx context.Context, userID string) (model.Settings, error)
	PutSettings(ctx context.Context, userID string, settings model.Settings) error
}
