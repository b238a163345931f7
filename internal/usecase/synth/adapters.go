package synth

import "github.com/geopulse-ai/geopulse/internal/domain"

// placeListAdapter extracts place records from a list payload (bare array
// or an object's "places"/"results" field), tagging each feature with
// source.
func placeListAdapter(source string) adapter {
	return func(raw any, coords coordIndex) []domain.Feature {
		var features []domain.Feature
		for _, rec := range placeRecords(raw) {
			if f, ok := featureFromRecord(rec, source, coords); ok {
				features = append(features, f)
			}
		}
		return features
	}
}

// placeDetailsAdapter handles a single place payload, wrapped or bare.
func placeDetailsAdapter(raw any, coords coordIndex) []domain.Feature {
	recs := placeRecords(raw)
	if len(recs) == 0 {
		if single, ok := raw.(map[string]any); ok {
			recs = []map[string]any{single}
		}
	}
	var features []domain.Feature
	for _, rec := range recs {
		if f, ok := featureFromRecord(rec, domain.ToolPlaceDetails, coords); ok {
			features = append(features, f)
		}
	}
	return features
}

// insightsAdapter handles density payloads. Count-only payloads and
// identifier-only entries contribute zero features unless a companion
// provider supplied coordinates for the same ids.
func insightsAdapter(raw any, coords coordIndex) []domain.Feature {
	var features []domain.Feature
	for _, rec := range placeRecords(raw) {
		if f, ok := featureFromRecord(rec, domain.ToolPlaceInsights, coords); ok {
			features = append(features, f)
		}
	}
	return features
}

// eventsAdapter extracts venue positions from an events payload. The venue
// may be nested or flattened onto the event record.
func eventsAdapter(raw any, coords coordIndex) []domain.Feature {
	var records []map[string]any
	switch v := raw.(type) {
	case []any:
		records = objectsOf(v)
	case map[string]any:
		if list, ok := v["events"].([]any); ok {
			records = objectsOf(list)
		}
	}

	var features []domain.Feature
	for _, rec := range records {
		flat := rec
		if venue, ok := rec["venue"].(map[string]any); ok {
			if _, _, hasTop := recordCoords(rec); !hasTop {
				merged := map[string]any{}
				for k, v := range rec {
					merged[k] = v
				}
				for k, v := range venue {
					merged[k] = v
				}
				flat = merged
			}
		}
		if f, ok := featureFromRecord(flat, domain.ToolLocalEvents, coords); ok {
			features = append(features, f)
		}
	}
	return features
}

// geoIPAdapter emits a single feature for an IP-geolocation payload.
func geoIPAdapter(raw any, _ coordIndex) []domain.Feature {
	rec, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	lon, lat, ok := recordCoords(rec)
	if !ok {
		return nil
	}
	props := map[string]any{domain.PropSource: domain.ToolIPGeolocation}
	if city, ok := strField(rec, "city"); ok {
		props[domain.PropName] = city
	}
	if country, ok := strField(rec, "country"); ok {
		props["country"] = country
	}
	return []domain.Feature{domain.NewPointFeature(lon, lat, props)}
}

// noGeometryAdapter is registered for providers whose payloads never carry
// coordinates.
func noGeometryAdapter(any, coordIndex) []domain.Feature { return nil }
