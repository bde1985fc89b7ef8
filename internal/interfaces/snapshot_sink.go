package interfaces

import (
	"context"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
)

// SnapshotSink receives the final per-client account snapshots of a run.
type SnapshotSink interface {
	WriteSnapshots(ctx context.Context, snapshots []models.AccountSnapshot) error
}
