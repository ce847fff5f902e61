package interfaces

import (
	"context"
	"io"

	"github.com/cvd-tools/cvdget/pkg/domain/model"
)

// UpdateUseCase defines the database update operation
type UpdateUseCase interface {
	// UpdateDatabase fetches every target in the plan, trying each
	// (mirror, identity) pair in order until one delivers a non-empty
	// file. The returned error is non-nil only for fatal conditions
	// (uncreatable database directory, cancelled context); per-file
	// failures are reported through the summary.
	UpdateDatabase(ctx context.Context, plan *model.UpdatePlan) (*model.RunSummary, error)
}

// BackupStore persists copies of existing database files before they
// are overwritten
type BackupStore interface {
	// Save writes the content of r under key
	Save(ctx context.Context, key string, r io.Reader) error
}
