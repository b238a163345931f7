package geodata

import (
	"context"
	"net/url"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// GeolocateIP resolves an IP address to an approximate position.
func (c *Client) GeolocateIP(ctx context.Context, ip string) (*domain.GeoIPInfo, error) {
	var resp domain.GeoIPInfo
	if err := c.get(ctx, "ip_geolocation", "/v1/geoip/"+url.PathEscape(ip), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FootTraffic fetches the visit-intensity summary for one place.
func (c *Client) FootTraffic(ctx context.Context, placeID string) (*domain.FootTrafficSummary, error) {
	var resp domain.FootTrafficSummary
	if err := c.get(ctx, "foot_traffic", "/v1/traffic/"+url.PathEscape(placeID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Weather fetches current conditions at a free-text location phrase.
func (c *Client) Weather(ctx context.Context, near string) (*domain.WeatherSnapshot, error) {
	params := url.Values{}
	params.Set("near", near)

	var resp domain.WeatherSnapshot
	if err := c.get(ctx, "weather_snapshot", "/v1/weather", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
