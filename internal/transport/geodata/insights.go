package geodata

import (
	"context"
	"net/url"
	"strconv"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

func insightsParams(q domain.InsightsQuery) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.RadiusM))
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	return params
}

// InsightsCount runs a count-only density query over a circular area.
func (c *Client) InsightsCount(ctx context.Context, q domain.InsightsQuery) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "place_insights", "/v1/insights/count", insightsParams(q), &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// InsightsList runs a count+list density query. The vendor caps the list
// server-side; entries may be identifier-only when the vendor withholds
// coordinates for the tier.
func (c *Client) InsightsList(ctx context.Context, q domain.InsightsQuery) ([]domain.Place, error) {
	params := insightsParams(q)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp struct {
		Count  int         `json:"count"`
		Places []wirePlace `json:"places"`
	}
	if err := c.get(ctx, "place_insights", "/v1/insights/places", params, &resp); err != nil {
		return nil, err
	}
	return placesToDomain(resp.Places), nil
}
