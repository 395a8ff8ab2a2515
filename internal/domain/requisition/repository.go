package requisition

import (
	"context"

	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the persistence contract for the requisition aggregate.
// Save performs a full upsert of the aggregate (requisition, items, delivery
// records and document metadata) with diff-based deletion of removed child
// records; it never patches individual fields.
type Repository interface {
	// FindByID finds a requisition with all owned collections loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Requisition, error)

	// FindByNumber finds a requisition by its requisition number
	FindByNumber(ctx context.Context, number string) (*Requisition, error)

	// FindAll finds requisitions with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Requisition, error)

	// FindByStatus finds requisitions by workflow status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Requisition, error)

	// Save upserts the full aggregate
	Save(ctx context.Context, req *Requisition) error

	// SaveWithLock upserts the full aggregate with an optimistic version
	// check, returning shared.ErrConcurrencyConflict on stale writes
	SaveWithLock(ctx context.Context, req *Requisition) error

	// Count counts requisitions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
