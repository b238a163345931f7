package geodata

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

type wireEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue"`
	Category  string    `json:"category"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	StartsAt  time.Time `json:"startsAt"`
}

// EventsNear lists upcoming events around a free-text location phrase.
func (c *Client) EventsNear(ctx context.Context, near string, radiusM int) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("near", near)
	if radiusM > 0 {
		params.Set("radius", strconv.Itoa(radiusM))
	}

	var resp struct {
		Events []wireEvent `json:"events"`
	}
	if err := c.get(ctx, "local_events", "/v1/events", params, &resp); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(resp.Events))
	for _, w := range resp.Events {
		e := domain.Event{
			ID:       w.ID,
			Name:     w.Name,
			Venue:    w.Venue,
			Category: w.Category,
			StartsAt: w.StartsAt,
		}
		if w.Latitude != nil && w.Longitude != nil {
			e.Latitude = *w.Latitude
			e.Longitude = *w.Longitude
			e.HasCoords = true
		}
		events = append(events, e)
	}
	return events, nil
}
