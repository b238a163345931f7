package dispatch

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// Definitions advertises the executable tools in OpenAI function-calling
// form. Meta-tools are deliberately absent: the dispatcher rejects them.
var Definitions = []openai.Tool{
	functionTool(domain.ToolPOISearch,
		"fuzzy point-of-interest search, optionally biased near a location phrase",
		map[string]any{
			"query":    schemaString("free-text search terms"),
			"category": schemaString("category filter, e.g. restaurant"),
			"near":     schemaString("location phrase to bias results toward"),
			"radiusM":  schemaInteger("search radius in meters"),
			"limit":    schemaInteger("maximum number of results"),
		}, []string{"query"}),
	functionTool(domain.ToolPlaceDetails,
		"fetch one place by its provider id",
		map[string]any{
			"id": schemaString("place id from a previous search"),
		}, []string{"id"}),
	functionTool(domain.ToolPlaceInsights,
		"count places in a circular area, optionally listing them and classifying density",
		map[string]any{
			"latitude":      schemaNumber("circle center latitude"),
			"longitude":     schemaNumber("circle center longitude"),
			"radiusM":       schemaInteger("circle radius in meters"),
			"category":      schemaString("category filter"),
			"includePlaces": schemaBool("also return a bounded place listing"),
			"analyze":       schemaBool("classify density and attach recommendations"),
		}, []string{"latitude", "longitude", "radiusM"}),
	functionTool(domain.ToolLocalEvents,
		"list upcoming events near a location phrase",
		map[string]any{
			"near":    schemaString("location phrase"),
			"radiusM": schemaInteger("search radius in meters"),
		}, []string{"near"}),
	functionTool(domain.ToolIPGeolocation,
		"resolve an IP address to an approximate position",
		map[string]any{
			"ip": schemaString("IPv4 or IPv6 address"),
		}, []string{"ip"}),
	functionTool(domain.ToolFootTraffic,
		"fetch the visit-intensity summary for one place",
		map[string]any{
			"placeId": schemaString("place id"),
		}, []string{"placeId"}),
	functionTool(domain.ToolWeather,
		"current weather conditions at a location phrase",
		map[string]any{
			"near": schemaString("location phrase"),
		}, []string{"near"}),
}

func functionTool(name, description string, properties map[string]any, required []string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}

func schemaString(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func schemaNumber(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func schemaInteger(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func schemaBool(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}
