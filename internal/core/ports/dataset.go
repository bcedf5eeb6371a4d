package ports

import (
	"context"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

// DatasetSource reads a complete dataset. Failures to read or parse the
// source are reported as *domain.DataSourceError.
type DatasetSource interface {
	Load(ctx context.Context, path string) (*domain.Dataset, error)
}
