package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/usecase/insights"
)

// NewRegistry binds canonical tool ids to their implementations. The
// returned map is the dispatcher's fixed registry; composition happens
// once in main.
func NewRegistry(geo GeodataProvider, details DetailsProvider, planner InsightsPlanner) map[string]ToolFunc {
	return map[string]ToolFunc{
		domain.ToolPOISearch: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Query    string `json:"query"`
				Category string `json:"category"`
				Near     string `json:"near"`
				RadiusM  int    `json:"radiusM"`
				Limit    int    `json:"limit"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			places, err := geo.SearchPOI(ctx, domain.SearchQuery{
				Text:     in.Query,
				Category: in.Category,
				Near:     in.Near,
				RadiusM:  in.RadiusM,
				Limit:    in.Limit,
			})
			if err != nil {
				return nil, err
			}
			return map[string]any{"places": places}, nil
		},

		domain.ToolPlaceDetails: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				ID string `json:"id"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			if in.ID == "" {
				return nil, fmt.Errorf("place id is required")
			}
			place, err := details.PlaceDetails(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"place": place}, nil
		},

		domain.ToolPlaceInsights: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Latitude      float64 `json:"latitude"`
				Longitude     float64 `json:"longitude"`
				RadiusM       int     `json:"radiusM"`
				Category      string  `json:"category"`
				IncludePlaces bool    `json:"includePlaces"`
				Analyze       bool    `json:"analyze"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return planner.Plan(ctx, insights.PlanRequest{
				Query: domain.InsightsQuery{
					Latitude:  in.Latitude,
					Longitude: in.Longitude,
					RadiusM:   in.RadiusM,
					Category:  in.Category,
				},
				IncludePlaces: in.IncludePlaces,
				Analyze:       in.Analyze,
			})
		},

		domain.ToolLocalEvents: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Near    string `json:"near"`
				RadiusM int    `json:"radiusM"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			events, err := geo.EventsNear(ctx, in.Near, in.RadiusM)
			if err != nil {
				return nil, err
			}
			return map[string]any{"events": events}, nil
		},

		domain.ToolIPGeolocation: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				IP string `json:"ip"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return geo.GeolocateIP(ctx, in.IP)
		},

		domain.ToolFootTraffic: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				PlaceID string `json:"placeId"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return geo.FootTraffic(ctx, in.PlaceID)
		},

		domain.ToolWeather: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Near string `json:"near"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return geo.Weather(ctx, in.Near)
		},
	}
}

func decodeArgs(args json.RawMessage, out any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, out); err != nil {
		return fmt.Errorf("decode tool args: %w", domain.ErrMalformedPayload)
	}
	return nil
}
