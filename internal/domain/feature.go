package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Well-known feature property keys. Adapters copy display fields under
// these names; Source carries the provenance tag of the contributing
// provider.
const (
	PropName       = "name"
	PropAddress    = "address"
	PropCategory   = "category"
	PropRating     = "rating"
	PropConfidence = "confidence"
	PropSource     = "source"
)

// Feature is one GeoJSON-style feature. Geometry may be nil for features
// promoted from upstream payloads that carried properties only; the
// synthesizer itself never emits such features.
type Feature struct {
	Geometry   geom.T
	Properties map[string]any
}

// NewPointFeature builds a point feature at (lon, lat). Coordinates are
// GeoJSON order: X is longitude, Y is latitude.
func NewPointFeature(lon, lat float64, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}
	return Feature{
		Geometry:   geom.NewPointFlat(geom.XY, []float64{lon, lat}),
		Properties: props,
	}
}

// Point returns the feature geometry as a point with finite coordinates.
func (f Feature) Point() (lon, lat float64, ok bool) {
	p, isPoint := f.Geometry.(*geom.Point)
	if !isPoint || p.Empty() {
		return 0, 0, false
	}
	lon, lat = p.X(), p.Y()
	if !finite(lon) || !finite(lat) {
		return 0, 0, false
	}
	return lon, lat, true
}

// Source returns the provenance tag, if any.
func (f Feature) Source() string {
	s, _ := f.Properties[PropSource].(string)
	return s
}

// MarshalJSON encodes the feature as a GeoJSON Feature object.
func (f Feature) MarshalJSON() ([]byte, error) {
	gf := geojson.Feature{Geometry: f.Geometry, Properties: f.Properties}
	data, err := gf.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal feature: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes a GeoJSON Feature. A missing or null geometry is
// tolerated; an unparsable one fails the feature.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var raw struct {
		Geometry   json.RawMessage `json:"geometry"`
		Properties map[string]any  `json:"properties"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal feature: %w", err)
	}
	f.Properties = raw.Properties
	f.Geometry = nil
	if len(raw.Geometry) > 0 && string(raw.Geometry) != "null" {
		var g geom.T
		if err := geojson.Unmarshal(raw.Geometry, &g); err != nil {
			return fmt.Errorf("unmarshal feature geometry: %w", err)
		}
		f.Geometry = g
	}
	return nil
}

// Bounds is the coordinate-wise extrema over point features.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Center is the arithmetic mean position over point features.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CollectionMetadata describes a FeatureCollection.
type CollectionMetadata struct {
	Count       int       `json:"count"`
	Sources     []string  `json:"sources,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// FeatureCollection is the canonical geostructured result. Feature order is
// insertion order and carries no meaning. Bounds and Center are present iff
// at least one point feature with finite coordinates exists.
type FeatureCollection struct {
	Features []Feature
	Bounds   *Bounds
	Center   *Center
	Metadata CollectionMetadata
}

// Finalize recomputes bounds, center, and metadata from the current
// feature list. Only point features with finite coordinates contribute to
// bounds and center; when none exist both stay nil.
func (fc *FeatureCollection) Finalize(now time.Time) {
	fc.Bounds = nil
	fc.Center = nil

	var (
		points         int
		sumLat, sumLon float64
		b              Bounds
	)
	seen := map[string]struct{}{}
	sources := []string{}
	for _, f := range fc.Features {
		if src := f.Source(); src != "" {
			if _, dup := seen[src]; !dup {
				seen[src] = struct{}{}
				sources = append(sources, src)
			}
		}
		lon, lat, ok := f.Point()
		if !ok {
			continue
		}
		if points == 0 {
			b = Bounds{North: lat, South: lat, East: lon, West: lon}
		} else {
			b.North = math.Max(b.North, lat)
			b.South = math.Min(b.South, lat)
			b.East = math.Max(b.East, lon)
			b.West = math.Min(b.West, lon)
		}
		sumLat += lat
		sumLon += lon
		points++
	}

	if points > 0 {
		bb := b
		fc.Bounds = &bb
		fc.Center = &Center{Lat: sumLat / float64(points), Lon: sumLon / float64(points)}
	}

	fc.Metadata = CollectionMetadata{
		Count:       len(fc.Features),
		Sources:     sources,
		GeneratedAt: now,
	}
}

// MarshalJSON encodes the collection with the GeoJSON type tag.
func (fc FeatureCollection) MarshalJSON() ([]byte, error) {
	out := struct {
		Type     string             `json:"type"`
		Features []Feature          `json:"features"`
		Bounds   *Bounds            `json:"bounds,omitempty"`
		Center   *Center            `json:"center,omitempty"`
		Metadata CollectionMetadata `json:"metadata"`
	}{
		Type:     "FeatureCollection",
		Features: fc.Features,
		Bounds:   fc.Bounds,
		Center:   fc.Center,
		Metadata: fc.Metadata,
	}
	if out.Features == nil {
		out.Features = []Feature{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal feature collection: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes an upstream FeatureCollection. The type tag and a
// features array are required; bounds, center, and metadata are taken as
// given when present (promoted collections pass through unchanged).
func (fc *FeatureCollection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     string              `json:"type"`
		Features []Feature           `json:"features"`
		Bounds   *Bounds             `json:"bounds"`
		Center   *Center             `json:"center"`
		Metadata *CollectionMetadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal feature collection: %w", err)
	}
	if raw.Type != "FeatureCollection" || raw.Features == nil {
		return fmt.Errorf("not a feature collection: %w", ErrMalformedPayload)
	}
	fc.Features = raw.Features
	fc.Bounds = raw.Bounds
	fc.Center = raw.Center
	if raw.Metadata != nil {
		fc.Metadata = *raw.Metadata
	} else {
		fc.Metadata = CollectionMetadata{Count: len(raw.Features)}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
