package geodata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// SearchPOI runs a fuzzy point-of-interest search. Near biases results
// toward a free-text location phrase; RadiusM and Limit bound the search.
func (c *Client) SearchPOI(ctx context.Context, q domain.SearchQuery) ([]domain.Place, error) {
	params := url.Values{}
	if q.Text != "" {
		params.Set("query", q.Text)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Near != "" {
		params.Set("near", q.Near)
	}
	if q.RadiusM > 0 {
		params.Set("radius", strconv.Itoa(q.RadiusM))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp struct {
		Places []wirePlace `json:"places"`
	}
	if err := c.get(ctx, "poi_search", "/v1/search", params, &resp); err != nil {
		return nil, err
	}
	return placesToDomain(resp.Places), nil
}

// PlaceDetails fetches one place by id.
func (c *Client) PlaceDetails(ctx context.Context, id string) (*domain.Place, error) {
	var resp struct {
		Place *wirePlace `json:"place"`
	}
	if err := c.get(ctx, "place_details", "/v1/places/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Place == nil {
		return nil, fmt.Errorf("place %q missing from response: %w", id, domain.ErrMalformedPayload)
	}
	p := resp.Place.toDomain()
	return &p, nil
}
