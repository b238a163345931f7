package domain

import (
	"encoding/json"
	"time"
)

// Place is one point of interest as reported by the geodata vendor.
// Latitude/Longitude are only meaningful when HasCoords is true; a density
// query may return identifier-only entries. The JSON codec keeps the
// distinction: coordinates are emitted only when actually present, so a
// genuine (0,0) survives a round trip and an absent position never turns
// into one.
type Place struct {
	ID         string
	Name       string
	Address    string
	Category   string
	Rating     float64
	Confidence string
	Latitude   float64
	Longitude  float64
	HasCoords  bool
}

type placeJSON struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Address    string   `json:"address,omitempty"`
	Category   string   `json:"category,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// MarshalJSON emits coordinates only when the place has them.
func (p Place) MarshalJSON() ([]byte, error) {
	out := placeJSON{
		ID:         p.ID,
		Name:       p.Name,
		Address:    p.Address,
		Category:   p.Category,
		Rating:     p.Rating,
		Confidence: p.Confidence,
	}
	if p.HasCoords {
		lat, lon := p.Latitude, p.Longitude
		out.Latitude, out.Longitude = &lat, &lon
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the coordinate-presence flag.
func (p *Place) UnmarshalJSON(data []byte) error {
	var in placeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Place{
		ID:         in.ID,
		Name:       in.Name,
		Address:    in.Address,
		Category:   in.Category,
		Rating:     in.Rating,
		Confidence: in.Confidence,
	}
	if in.Latitude != nil && in.Longitude != nil {
		p.Latitude = *in.Latitude
		p.Longitude = *in.Longitude
		p.HasCoords = true
	}
	return nil
}

// Event is one scheduled happening near a location.
type Event struct {
	ID        string
	Name      string
	Venue     string
	Category  string
	Latitude  float64
	Longitude float64
	HasCoords bool
	StartsAt  time.Time
}

type eventJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue,omitempty"`
	Category  string    `json:"category,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	StartsAt  time.Time `json:"startsAt,omitzero"`
}

// MarshalJSON emits venue coordinates only when the event has them.
func (e Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{
		ID:       e.ID,
		Name:     e.Name,
		Venue:    e.Venue,
		Category: e.Category,
		StartsAt: e.StartsAt,
	}
	if e.HasCoords {
		lat, lon := e.Latitude, e.Longitude
		out.Latitude, out.Longitude = &lat, &lon
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the coordinate-presence flag.
func (e *Event) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Event{
		ID:       in.ID,
		Name:     in.Name,
		Venue:    in.Venue,
		Category: in.Category,
		StartsAt: in.StartsAt,
	}
	if in.Latitude != nil && in.Longitude != nil {
		e.Latitude = *in.Latitude
		e.Longitude = *in.Longitude
		e.HasCoords = true
	}
	return nil
}

// GeoIPInfo is an IP-geolocation result.
type GeoIPInfo struct {
	IP        string  `json:"ip"`
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FootTrafficSummary aggregates visit intensity for one place.
type FootTrafficSummary struct {
	PlaceID     string    `json:"placeId"`
	Level       string    `json:"level"` // low, moderate, high
	HourlyIndex []float64 `json:"hourlyIndex,omitempty"`
}

// WeatherSnapshot is current conditions at a location.
type WeatherSnapshot struct {
	Location   string  `json:"location"`
	TempC      float64 `json:"tempC"`
	Conditions string  `json:"conditions,omitempty"`
	WindKPH    float64 `json:"windKph,omitempty"`
}

// SearchQuery describes a fuzzy POI search. Near biases results toward a
// free-text location phrase.
type SearchQuery struct {
	Text     string
	Category string
	Near     string
	RadiusM  int
	Limit    int
}

// InsightsQuery describes a circular density query.
type InsightsQuery struct {
	Latitude  float64
	Longitude float64
	RadiusM   int
	Category  string
	Limit     int
}
