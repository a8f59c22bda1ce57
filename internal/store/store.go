package store

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

var (
	// ErrNotFound means no result exists for the id, or it has expired.
	ErrNotFound = errors.New("result not found")
	// ErrDuplicateKey means a result with the same id was already stored.
	ErrDuplicateKey = errors.New("result already stored")
)

// ResultStore persists finished reel results. Results are written once and never
// updated. Implementations must be safe for concurrent use.
type ResultStore interface {
	Ping(ctx context.Context) error
	Put(ctx context.Context, result *models.ReelResult) error
	Get(ctx context.Context, id string) (*models.ReelResult, error)
}
