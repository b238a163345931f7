package analyze

import (
	"testing"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

func TestQuery_MarketAnalysisIntent(t *testing.T) {
	result := Query("find multi-family viability near Brickell, Miami")

	if result.Intent != domain.IntentMarketAnalysis {
		t.Errorf("expected market_analysis, got %q", result.Intent)
	}
	if !result.WantsMap {
		t.Error("market analysis implies map output")
	}
	if !result.WantsDensity {
		t.Error("market analysis implies density data")
	}
	if len(result.Locations) != 1 || result.Locations[0] != "Brickell, Miami" {
		t.Errorf("expected location [Brickell, Miami], got %v", result.Locations)
	}
	if result.Confidence <= 0.3 {
		t.Errorf("expected raised confidence, got %v", result.Confidence)
	}
}

func TestQuery_EventLookup(t *testing.T) {
	result := Query("what events are happening in Wynwood this weekend?")

	if result.Intent != domain.IntentEventLookup {
		t.Errorf("expected event_lookup, got %q", result.Intent)
	}
	if !result.WantsEvents {
		t.Error("expected WantsEvents")
	}
	if len(result.Timeframes) == 0 {
		t.Error("expected a timeframe entity")
	}
}

func TestQuery_WeatherCheck(t *testing.T) {
	result := Query("current weather in Key West")

	if result.Intent != domain.IntentWeatherCheck {
		t.Errorf("expected weather_check, got %q", result.Intent)
	}
	if !result.WantsWeather {
		t.Error("expected WantsWeather")
	}
}

func TestQuery_GeneralFallback(t *testing.T) {
	result := Query("hello there")

	if result.Intent != domain.IntentGeneral {
		t.Errorf("expected general, got %q", result.Intent)
	}
	if result.Confidence != 0.3 {
		t.Errorf("expected baseline confidence 0.3, got %v", result.Confidence)
	}
	if result.WantsMap || result.WantsDensity || result.WantsEvents || result.WantsWeather {
		t.Error("expected no routing flags")
	}
}

func TestQuery_CategoryEntities(t *testing.T) {
	result := Query("compare coffee and gym density in Brickell")

	found := map[string]bool{}
	for _, c := range result.Categories {
		found[c] = true
	}
	if !found["coffee"] || !found["gym"] {
		t.Errorf("expected coffee and gym categories, got %v", result.Categories)
	}
}

func TestQuery_SuggestedAgents(t *testing.T) {
	withMap := Query("show a map of restaurants in Brickell")
	if len(withMap.SuggestedAgents) != 2 || withMap.SuggestedAgents[1] != "map_agent" {
		t.Errorf("expected map_agent suggested, got %v", withMap.SuggestedAgents)
	}

	noMap := Query("what's the forecast in Miami")
	if len(noMap.SuggestedAgents) != 1 || noMap.SuggestedAgents[0] != "domain_agent" {
		t.Errorf("expected only domain_agent, got %v", noMap.SuggestedAgents)
	}
}

func TestQuery_Deterministic(t *testing.T) {
	text := "find multi-family viability near Brickell, Miami"
	first := Query(text)
	for i := 0; i < 5; i++ {
		if got := Query(text); got.Intent != first.Intent || got.Confidence != first.Confidence {
			t.Fatal("classification must be deterministic for identical input")
		}
	}
}

func TestLocationPhrase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"find multi-family viability near Brickell, Miami", "Brickell, Miami"},
		{"coffee shops around Union Square?", "Union Square"},
		{"what's happening in Wynwood.", "Wynwood"},
		{"restaurants at South Beach!", "South Beach"},
		{"downtown Denver", "downtown Denver"},
		{"  padded text  ", "padded text"},
	}

	for _, tt := range tests {
		if got := LocationPhrase(tt.in); got != tt.want {
			t.Errorf("LocationPhrase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
