// Package insights plans adaptive queries against the count-capped
// density provider.
package insights

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// Density tiers classify place count per km².
const (
	TierLow       = "low"
	TierModerate  = "moderate"
	TierHigh      = "high"
	TierSaturated = "saturated"
)

// Per-km² thresholds between tiers.
const (
	densityModerate  = 1.0
	densityHigh      = 5.0
	densitySaturated = 15.0
)

// PlanRequest describes one density query. IncludePlaces asks for a place
// listing on top of the count; Analyze asks for a density classification.
type PlanRequest struct {
	Query         domain.InsightsQuery
	IncludePlaces bool
	Analyze       bool
}

// DensityAnalysis is the qualitative read of a count over an area.
type DensityAnalysis struct {
	Tier            string   `json:"tier"`
	PerKm2          float64  `json:"perKm2"`
	Recommendations []string `json:"recommendations,omitempty"`
	RiskFlags       []string `json:"riskFlags,omitempty"`
}

// PlanResult is the outcome of one planned density query. Count always
// reflects the original radius; ListRadiusM is the possibly reduced radius
// the listing ran at.
type PlanResult struct {
	Count          int              `json:"count"`
	ListRadiusM    int              `json:"listRadiusM,omitempty"`
	Places         []domain.Place   `json:"places,omitempty"`
	ListingOmitted bool             `json:"listingOmitted,omitempty"`
	Truncated      bool             `json:"truncated,omitempty"`
	Density        *DensityAnalysis `json:"density,omitempty"`
}

// Service plans count-then-list queries while respecting the provider's
// hard list-size cap.
type Service struct {
	provider     Provider
	maxListSize  int
	minRadiusM   int
	safetyMargin float64
	logger       *zap.Logger
}

// New creates an insights planner. safetyMargin must be below 1; it
// compensates for non-uniform place distributions after radius scaling.
func New(provider Provider, maxListSize, minRadiusM int, safetyMargin float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:     provider,
		maxListSize:  maxListSize,
		minRadiusM:   minRadiusM,
		safetyMargin: safetyMargin,
		logger:       logger,
	}
}

// Plan always issues the count query first. When a listing is requested
// and the count exceeds the cap, the listing radius shrinks assuming count
// scales with area; a listing failure keeps the count and omits the list
// without failing the call.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	count, err := s.provider.InsightsCount(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("insights count: %w", err)
	}

	result := &PlanResult{Count: count}

	if req.IncludePlaces {
		s.listPlaces(ctx, req, count, result)
	}

	if req.Analyze {
		result.Density = classifyDensity(count, req.Query.RadiusM)
	}

	return result, nil
}

func (s *Service) listPlaces(ctx context.Context, req PlanRequest, count int, result *PlanResult) {
	listQuery := req.Query
	if listQuery.Limit <= 0 || listQuery.Limit > s.maxListSize {
		listQuery.Limit = s.maxListSize
	}
	listQuery.RadiusM = s.scaledRadius(req.Query.RadiusM, count)
	result.ListRadiusM = listQuery.RadiusM

	places, err := s.provider.InsightsList(ctx, listQuery)
	if err != nil {
		// The count stands on its own; a failed listing is not fatal.
		s.logger.Warn("Insights listing failed, keeping count only", zap.Error(err))
		result.ListingOmitted = true
		return
	}
	result.Places = places
	// The provider's response is authoritative: uniform-density scaling is
	// a heuristic and the list may still hit the cap.
	result.Truncated = len(places) >= s.maxListSize
}

// scaledRadius shrinks the query radius when the count exceeds the cap,
// assuming count scales with area (∝ radius²). Never drops below the
// configured floor.
func (s *Service) scaledRadius(radiusM, count int) int {
	if count <= s.maxListSize {
		return radiusM
	}
	scale := math.Sqrt(float64(s.maxListSize)/float64(count)) * s.safetyMargin
	scaled := int(math.Floor(float64(radiusM) * scale))
	if scaled < s.minRadiusM {
		return s.minRadiusM
	}
	return scaled
}

// classifyDensity derives the tier from count over the circle's area in
// km² and attaches tier-specific recommendations and risk flags.
func classifyDensity(count, radiusM int) *DensityAnalysis {
	radiusKm := float64(radiusM) / 1000
	areaKm2 := math.Pi * radiusKm * radiusKm
	if areaKm2 <= 0 {
		return nil
	}
	perKm2 := float64(count) / areaKm2

	analysis := &DensityAnalysis{PerKm2: perKm2}
	switch {
	case perKm2 < densityModerate:
		analysis.Tier = TierLow
		analysis.Recommendations = []string{
			"sparse coverage: widen the search area or relax the category filter",
			"low competition density may indicate an underserved area",
		}
	case perKm2 < densityHigh:
		analysis.Tier = TierModerate
		analysis.Recommendations = []string{
			"balanced density: compare against foot-traffic signals before concluding",
		}
	case perKm2 < densitySaturated:
		analysis.Tier = TierHigh
		analysis.Recommendations = []string{
			"dense cluster: differentiate on category or price tier",
		}
		analysis.RiskFlags = []string{"high competition"}
	default:
		analysis.Tier = TierSaturated
		analysis.Recommendations = []string{
			"saturated market: entry requires a strong differentiator",
		}
		analysis.RiskFlags = []string{"market saturation", "high competition"}
	}
	return analysis
}
