// Package analyze classifies a user query into intent, entities, and
// routing flags. The classification is computed once per request and
// drives tool planning; it never calls out to a model.
package analyze

import (
	"strings"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// locationPrepositions introduce a location phrase in free text, checked
// in order.
var locationPrepositions = []string{" near ", " around ", " in ", " at "}

var intentKeywords = map[domain.Intent][]string{
	domain.IntentMarketAnalysis: {
		"market", "viability", "competition", "density", "saturation",
		"demand", "opportunity",
	},
	domain.IntentSiteSelection: {
		"site", "where should", "best place", "open a", "location for",
		"relocate",
	},
	domain.IntentEventLookup: {
		"event", "events", "concert", "festival", "happening",
	},
	domain.IntentWeatherCheck: {
		"weather", "temperature", "forecast", "rain", "humidity",
	},
}

// intentPriority breaks ties deterministically when keyword hits are equal.
var intentPriority = []domain.Intent{
	domain.IntentMarketAnalysis,
	domain.IntentSiteSelection,
	domain.IntentEventLookup,
	domain.IntentWeatherCheck,
}

var categoryKeywords = []string{
	"multi-family", "apartment", "restaurant", "cafe", "coffee", "gym",
	"retail", "hotel", "bar", "office", "grocery", "pharmacy",
}

var metricKeywords = []string{
	"foot traffic", "density", "rating", "visits", "count", "vacancy",
}

var timeframeKeywords = []string{
	"today", "tonight", "this week", "this weekend", "next week",
	"next month", "this month",
}

// Query classifies one user query. Deterministic given identical input.
func Query(text string) domain.QueryAnalysisResult {
	lower := strings.ToLower(text)

	result := domain.QueryAnalysisResult{Intent: domain.IntentGeneral, Confidence: 0.3}

	bestHits := 0
	for _, intent := range intentPriority {
		hits := 0
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			result.Intent = intent
		}
	}
	if bestHits > 0 {
		result.Confidence = 0.5 + 0.15*float64(bestHits)
		if result.Confidence > 0.95 {
			result.Confidence = 0.95
		}
	}

	if loc := LocationPhrase(text); loc != "" && loc != text {
		result.Locations = []string{loc}
	}
	result.Categories = matchAll(lower, categoryKeywords)
	result.Metrics = matchAll(lower, metricKeywords)
	result.Timeframes = matchAll(lower, timeframeKeywords)

	result.WantsMap = result.Intent == domain.IntentMarketAnalysis ||
		result.Intent == domain.IntentSiteSelection ||
		strings.Contains(lower, "map") || strings.Contains(lower, "where")
	result.WantsDensity = result.Intent == domain.IntentMarketAnalysis ||
		strings.Contains(lower, "density") || strings.Contains(lower, "competition")
	result.WantsEvents = result.Intent == domain.IntentEventLookup
	result.WantsWeather = result.Intent == domain.IntentWeatherCheck

	result.SuggestedAgents = []string{"domain_agent"}
	if result.WantsMap {
		result.SuggestedAgents = append(result.SuggestedAgents, "map_agent")
	}

	return result
}

// LocationPhrase extracts the location phrase from a query: the text
// following the first location preposition, else the whole message.
func LocationPhrase(text string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	for _, prep := range locationPrepositions {
		idx := strings.Index(lower, prep)
		if idx < 0 {
			continue
		}
		phrase := strings.TrimSpace(trimmed[idx+len(prep):])
		phrase = strings.TrimRight(phrase, ".?! ")
		if phrase != "" {
			return phrase
		}
	}
	return strings.TrimRight(trimmed, ".?! ")
}

func matchAll(lower string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
