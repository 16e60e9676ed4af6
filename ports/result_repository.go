package ports

import (
	"context"

	"gorqa/app"
	"gorqa/domain/core"
)

// ResultRepository persists and retrieves batch analysis runs. Stored runs
// carry metric results only; embedded spaces and recurrence matrices are
// recomputed on demand, never persisted.
type ResultRepository interface {
	SaveBatch(ctx context.Context, batch *app.BatchResult) error
	GetBatch(ctx context.Context, runID core.RunID) (*app.BatchResult, error)
	ListRuns(ctx context.Context, limit int) ([]core.RunID, error)
}
