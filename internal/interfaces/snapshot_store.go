package interfaces

import (
	"context"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

// SnapshotStore exports the final account snapshot of a run.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, runID string, accounts []models.Account) error
}
