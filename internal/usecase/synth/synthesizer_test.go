package synth

import (
	"testing"
	"time"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func place(id string, lat, lon float64, name string) map[string]any {
	return map[string]any{"id": id, "latitude": lat, "longitude": lon, "name": name}
}

func TestSynthesize_PlaceList(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolPOISearch: map[string]any{"places": []any{
			place("p1", 25.76, -80.19, "Cafe Uno"),
			place("p2", 25.79, -80.13, "Cafe Dos"),
		}},
	}, testNow)

	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	for _, f := range fc.Features {
		if f.Source() != domain.ToolPOISearch {
			t.Errorf("expected source tag %q, got %q", domain.ToolPOISearch, f.Source())
		}
	}
	if fc.Features[0].Properties[domain.PropName] != "Cafe Uno" {
		t.Errorf("expected name copied, got %v", fc.Features[0].Properties)
	}
	if fc.Bounds == nil || fc.Center == nil {
		t.Error("expected bounds and center")
	}
}

func TestSynthesize_NeverFabricatesOrigin(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolPOISearch: map[string]any{"places": []any{
			map[string]any{"id": "p1", "name": "No coordinates"},
			map[string]any{"id": "p2", "name": "Partial", "latitude": 25.76},
		}},
	}, testNow)

	if len(fc.Features) != 0 {
		t.Fatalf("expected zero features, got %d", len(fc.Features))
	}
	if fc.Bounds != nil || fc.Center != nil {
		t.Error("expected nil bounds and center for an empty collection")
	}
}

func TestSynthesize_GenuineOriginKept(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolPOISearch: map[string]any{"places": []any{
			place("p1", 0, 0, "Null Island buoy"),
		}},
	}, testNow)

	if len(fc.Features) != 1 {
		t.Fatalf("a genuine (0,0) is valid, got %d features", len(fc.Features))
	}
}

func TestSynthesize_IdentifierOnlyDensityEntries(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolPlaceInsights: map[string]any{
			"count":  120,
			"places": []any{map[string]any{"id": "p9"}},
		},
	}, testNow)

	if len(fc.Features) != 0 {
		t.Fatalf("identifier-only entries must produce zero features, got %d", len(fc.Features))
	}
}

func TestSynthesize_IdentifierOnlyJoinsCompanionCoords(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolPOISearch: map[string]any{"places": []any{
			place("p9", 25.76, -80.19, "Cafe Uno"),
		}},
		domain.ToolPlaceInsights: map[string]any{
			"places": []any{map[string]any{"id": "p9", "category": "cafe"}},
		},
	}, testNow)

	// One from the search, one joined from the density listing.
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}

	var joined *domain.Feature
	for i := range fc.Features {
		if fc.Features[i].Source() == domain.ToolPlaceInsights {
			joined = &fc.Features[i]
		}
	}
	if joined == nil {
		t.Fatal("expected a feature joined from the density listing")
	}
	lon, lat, ok := joined.Point()
	if !ok || lat != 25.76 || lon != -80.19 {
		t.Errorf("expected companion coordinates, got (%v, %v)", lon, lat)
	}
}

func TestSynthesize_EventsVenueMerge(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolLocalEvents: map[string]any{"events": []any{
			map[string]any{
				"id":    "e1",
				"name":  "Art Walk",
				"venue": map[string]any{"latitude": 25.80, "longitude": -80.20},
			},
			map[string]any{"id": "e2", "name": "No venue coordinates"},
		}},
	}, testNow)

	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	lon, lat, ok := fc.Features[0].Point()
	if !ok || lat != 25.80 || lon != -80.20 {
		t.Errorf("expected venue position, got (%v, %v)", lon, lat)
	}
	if fc.Features[0].Properties[domain.PropName] != "Art Walk" {
		t.Errorf("expected event name kept, got %v", fc.Features[0].Properties)
	}
}

func TestSynthesize_GeoIP(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolIPGeolocation: map[string]any{
			"ip": "203.0.113.9", "city": "Miami", "country": "US",
			"latitude": 25.77, "longitude": -80.19,
		},
	}, testNow)

	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties[domain.PropName] != "Miami" {
		t.Errorf("expected city as name, got %v", fc.Features[0].Properties)
	}
}

func TestSynthesize_NoGeometryProviders(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolFootTraffic: map[string]any{"placeId": "p1", "level": "high"},
		domain.ToolWeather:     map[string]any{"location": "Miami", "tempC": 31.0},
	}, testNow)

	if len(fc.Features) != 0 {
		t.Errorf("traffic and weather payloads carry no geometry, got %d features", len(fc.Features))
	}
}

func TestSynthesize_AliasProviderKeys(t *testing.T) {
	fc := Synthesize(map[string]any{
		"geopulse.search_places": map[string]any{"places": []any{
			place("p1", 25.76, -80.19, "Cafe Uno"),
		}},
	}, testNow)

	if len(fc.Features) != 1 {
		t.Fatalf("expected alias key resolved, got %d features", len(fc.Features))
	}
	if fc.Features[0].Source() != domain.ToolPOISearch {
		t.Errorf("expected canonical source tag, got %q", fc.Features[0].Source())
	}
}

func TestSynthesize_TypedPayloadNormalized(t *testing.T) {
	places := []domain.Place{
		{ID: "p1", Name: "Cafe Uno", Latitude: 25.76, Longitude: -80.19, HasCoords: true},
		{ID: "p2", Name: "Identifier only"},
	}
	fc := Synthesize(map[string]any{
		domain.ToolPOISearch: map[string]any{"places": places},
	}, testNow)

	if len(fc.Features) != 1 {
		t.Fatalf("expected only the place with coordinates, got %d features", len(fc.Features))
	}
	lon, lat, ok := fc.Features[0].Point()
	if !ok || lat != 25.76 || lon != -80.19 {
		t.Errorf("unexpected position (%v, %v)", lon, lat)
	}
}

func TestSynthesize_TypedWrappedResults(t *testing.T) {
	fc := Synthesize(map[string]any{
		domain.ToolPlaceDetails: map[string]any{
			"place": &domain.Place{ID: "p1", Name: "Cafe Uno", Latitude: 25.76, Longitude: -80.19, HasCoords: true},
		},
		domain.ToolLocalEvents: map[string]any{
			"events": []domain.Event{
				{ID: "e1", Name: "Art Walk", Latitude: 25.80, Longitude: -80.20, HasCoords: true},
			},
		},
	}, testNow)

	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features from wrapped typed payloads, got %d", len(fc.Features))
	}
	sources := map[string]bool{}
	for _, f := range fc.Features {
		sources[f.Source()] = true
	}
	if !sources[domain.ToolPlaceDetails] || !sources[domain.ToolLocalEvents] {
		t.Errorf("unexpected source tags: %v", sources)
	}
}

func TestSynthesize_DeterministicOrder(t *testing.T) {
	input := map[string]any{
		domain.ToolLocalEvents: map[string]any{"events": []any{
			map[string]any{"id": "e1", "name": "Art Walk", "latitude": 25.80, "longitude": -80.20},
		}},
		domain.ToolPOISearch: map[string]any{"places": []any{
			place("p1", 25.76, -80.19, "Cafe Uno"),
		}},
	}

	for i := 0; i < 10; i++ {
		fc := Synthesize(input, testNow)
		if len(fc.Features) != 2 {
			t.Fatalf("expected 2 features, got %d", len(fc.Features))
		}
		if fc.Features[0].Source() != domain.ToolPOISearch {
			t.Fatal("search features must come before event features")
		}
	}
}

func TestSynthesize_EmptyInput(t *testing.T) {
	fc := Synthesize(nil, testNow)
	if fc == nil {
		t.Fatal("result must never be nil")
	}
	if len(fc.Features) != 0 || fc.Bounds != nil || fc.Center != nil {
		t.Errorf("expected empty collection, got %+v", fc)
	}
}
