package pipeline

import (
	"context"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/usecase/dispatch"
)

// Searcher is the POI search subset the seed-search stage needs.
type Searcher interface {
	SearchPOI(ctx context.Context, q domain.SearchQuery) ([]domain.Place, error)
}

// Executor runs tool request batches with per-call error isolation.
type Executor interface {
	Execute(ctx context.Context, reqs []dispatch.Request) map[string]domain.ToolInvocationRecord
}
