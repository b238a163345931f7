// Package synth consolidates heterogeneous raw provider payloads into one
// canonical FeatureCollection. Geometry is never fabricated: only records
// with explicit finite coordinates become features.
package synth

import (
	"encoding/json"
	"math"
	"time"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// coordIndex maps place id -> [lon, lat], built from every payload that
// names both an id and coordinates. Identifier-only density entries join
// against it; without a match they contribute nothing.
type coordIndex map[string][2]float64

// adapter extracts point features from one provider's raw payload.
type adapter func(raw any, coords coordIndex) []domain.Feature

// adapters is the per-provider extraction registry, keyed by canonical
// provider id. Adding a provider registers one adapter here.
var adapters = map[string]adapter{
	domain.ToolPOISearch:     placeListAdapter(domain.ToolPOISearch),
	domain.ToolPlaceDetails:  placeDetailsAdapter,
	domain.ToolPlaceInsights: insightsAdapter,
	domain.ToolLocalEvents:   eventsAdapter,
	domain.ToolIPGeolocation: geoIPAdapter,
	// Foot traffic and weather payloads carry no resolvable coordinates.
	domain.ToolFootTraffic: noGeometryAdapter,
	domain.ToolWeather:     noGeometryAdapter,
}

// providerOrder fixes feature insertion order so output is deterministic
// for identical input.
var providerOrder = []string{
	domain.ToolPOISearch,
	domain.ToolPlaceDetails,
	domain.ToolPlaceInsights,
	domain.ToolLocalEvents,
	domain.ToolIPGeolocation,
	domain.ToolFootTraffic,
	domain.ToolWeather,
}

// Synthesize consolidates raw provider payloads, keyed by provider id
// (alias spellings tolerated), into one FeatureCollection. The result is
// never nil; with no usable records it has zero features and nil
// bounds/center.
func Synthesize(results map[string]any, now time.Time) *domain.FeatureCollection {
	byProvider := make(map[string]any, len(results))
	for id, raw := range results {
		byProvider[domain.CanonicalToolID(id)] = normalize(raw)
	}

	coords := buildCoordIndex(byProvider)

	fc := &domain.FeatureCollection{}
	for _, provider := range providerOrder {
		raw, ok := byProvider[provider]
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, adapters[provider](raw, coords)...)
	}
	fc.Finalize(now)
	return fc
}

// normalize round-trips payloads through JSON so adapters see plain
// map/slice shapes. Typed values can sit arbitrarily deep inside generic
// containers (a tool result is a map wrapping typed slices), so every
// non-nil payload is round-tripped.
func normalize(raw any) any {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

// buildCoordIndex collects id -> coordinates pairs across all payloads.
func buildCoordIndex(byProvider map[string]any) coordIndex {
	idx := coordIndex{}
	for _, provider := range providerOrder {
		raw, ok := byProvider[provider]
		if !ok {
			continue
		}
		for _, rec := range placeRecords(raw) {
			id, _ := rec["id"].(string)
			if id == "" {
				continue
			}
			if lon, lat, ok := recordCoords(rec); ok {
				if _, seen := idx[id]; !seen {
					idx[id] = [2]float64{lon, lat}
				}
			}
		}
	}
	return idx
}

// recordCoords reads explicit finite coordinates off one record. Accepts
// latitude/lat and longitude/lon/lng spellings.
func recordCoords(rec map[string]any) (lon, lat float64, ok bool) {
	lat, latOK := numField(rec, "latitude", "lat")
	lon, lonOK := numField(rec, "longitude", "lon", "lng")
	if !latOK || !lonOK || !finite(lat) || !finite(lon) {
		return 0, 0, false
	}
	return lon, lat, true
}

func numField(rec map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := rec[key].(float64); ok {
			return v, true
		}
	}
	return 0, false
}

func strField(rec map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := rec[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// placeRecords flattens the place-like records out of a payload: a bare
// array, or an object's "places"/"results"/"place" fields.
func placeRecords(raw any) []map[string]any {
	switch v := raw.(type) {
	case []any:
		return objectsOf(v)
	case map[string]any:
		for _, key := range []string{"places", "results"} {
			if list, ok := v[key].([]any); ok {
				return objectsOf(list)
			}
		}
		if single, ok := v["place"].(map[string]any); ok {
			return []map[string]any{single}
		}
	}
	return nil
}

func objectsOf(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// featureFromRecord builds one point feature, copying display fields
// opportunistically. Returns false when the record has no resolvable
// finite coordinates.
func featureFromRecord(rec map[string]any, source string, coords coordIndex) (domain.Feature, bool) {
	lon, lat, ok := recordCoords(rec)
	if !ok {
		// Identifier-only record: usable only via a companion provider's
		// coordinates for the same id.
		id, _ := rec["id"].(string)
		pos, found := coords[id]
		if id == "" || !found {
			return domain.Feature{}, false
		}
		lon, lat = pos[0], pos[1]
	}

	props := map[string]any{domain.PropSource: source}
	if name, ok := strField(rec, "name", "title"); ok {
		props[domain.PropName] = name
	}
	if addr, ok := strField(rec, "address", "formattedAddress"); ok {
		props[domain.PropAddress] = addr
	}
	if cat, ok := strField(rec, "category"); ok {
		props[domain.PropCategory] = cat
	}
	if rating, ok := numField(rec, "rating"); ok {
		props[domain.PropRating] = rating
	}
	if conf, ok := strField(rec, "confidence"); ok {
		props[domain.PropConfidence] = conf
	}
	return domain.NewPointFeature(lon, lat, props), true
}
