package dispatch

import (
	"context"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/usecase/insights"
)

// GeodataProvider is the vendor-client contract the tool registry binds to.
type GeodataProvider interface {
	SearchPOI(ctx context.Context, q domain.SearchQuery) ([]domain.Place, error)
	EventsNear(ctx context.Context, near string, radiusM int) ([]domain.Event, error)
	GeolocateIP(ctx context.Context, ip string) (*domain.GeoIPInfo, error)
	FootTraffic(ctx context.Context, placeID string) (*domain.FootTrafficSummary, error)
	Weather(ctx context.Context, near string) (*domain.WeatherSnapshot, error)
}

// DetailsProvider fetches one place by id (possibly through the cache).
type DetailsProvider interface {
	PlaceDetails(ctx context.Context, id string) (*domain.Place, error)
}

// InsightsPlanner runs the adaptive count-then-list strategy.
type InsightsPlanner interface {
	Plan(ctx context.Context, req insights.PlanRequest) (*insights.PlanResult, error)
}
