package insights

import (
	"context"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// Provider is the density-provider contract for query planning.
type Provider interface {
	InsightsCount(ctx context.Context, q domain.InsightsQuery) (int, error)
	InsightsList(ctx context.Context, q domain.InsightsQuery) ([]domain.Place, error)
}
