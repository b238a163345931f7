package domain

import "strings"

// Canonical tool ids. Every alias spelling a caller may use maps onto one
// of these before lookup, storage, or provenance.
const (
	ToolPOISearch     = "poi_search"
	ToolPlaceDetails  = "place_details"
	ToolPlaceInsights = "place_insights"
	ToolLocalEvents   = "local_events"
	ToolIPGeolocation = "ip_geolocation"
	ToolFootTraffic   = "foot_traffic"
	ToolWeather       = "weather_snapshot"

	// Planning meta-tools. Never executable from within tool execution.
	ToolPlanQuery       = "plan_query"
	ToolExecutePipeline = "execute_pipeline"
)

// namespacePrefixes are stripped before alias lookup.
var namespacePrefixes = []string{"geopulse.", "tools.", "functions."}

// toolAliases maps every recognized alias spelling to its canonical id.
// Built once at package init; treated as immutable.
var toolAliases = map[string]string{
	ToolPOISearch:     ToolPOISearch,
	"poiSearch":       ToolPOISearch,
	"search_places":   ToolPOISearch,
	"searchPlaces":    ToolPOISearch,
	"place_search":    ToolPOISearch,
	"poi-search":      ToolPOISearch,
	ToolPlaceDetails:  ToolPlaceDetails,
	"placeDetails":    ToolPlaceDetails,
	"get_place":       ToolPlaceDetails,
	"place_by_id":     ToolPlaceDetails,
	ToolPlaceInsights: ToolPlaceInsights,
	"placeInsights":   ToolPlaceInsights,
	"insights":        ToolPlaceInsights,
	"place_density":   ToolPlaceInsights,
	"density_query":   ToolPlaceInsights,
	ToolLocalEvents:   ToolLocalEvents,
	"localEvents":     ToolLocalEvents,
	"events_near":     ToolLocalEvents,
	"event_search":    ToolLocalEvents,
	ToolIPGeolocation: ToolIPGeolocation,
	"ipGeolocation":   ToolIPGeolocation,
	"geoip":           ToolIPGeolocation,
	"ip_lookup":       ToolIPGeolocation,
	ToolFootTraffic:   ToolFootTraffic,
	"footTraffic":     ToolFootTraffic,
	"visit_trends":    ToolFootTraffic,
	ToolWeather:       ToolWeather,
	"weatherSnapshot": ToolWeather,
	"weather":         ToolWeather,
	"current_weather": ToolWeather,

	ToolPlanQuery:       ToolPlanQuery,
	"planQuery":         ToolPlanQuery,
	ToolExecutePipeline: ToolExecutePipeline,
	"executePipeline":   ToolExecutePipeline,
	"run_pipeline":      ToolExecutePipeline,
}

// CanonicalToolID strips known namespace prefixes and resolves alias
// spellings. Unrecognized ids pass through unchanged.
func CanonicalToolID(id string) string {
	for _, prefix := range namespacePrefixes {
		if strings.HasPrefix(id, prefix) {
			id = strings.TrimPrefix(id, prefix)
			break
		}
	}
	if canonical, ok := toolAliases[id]; ok {
		return canonical
	}
	return id
}

// IsMetaTool reports whether the canonical id names a planning meta-tool.
func IsMetaTool(canonical string) bool {
	return canonical == ToolPlanQuery || canonical == ToolExecutePipeline
}
