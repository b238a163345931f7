package domain

// Intent classifies what a location-intelligence query is asking for.
type Intent string

const (
	IntentMarketAnalysis Intent = "market_analysis"
	IntentSiteSelection  Intent = "site_selection"
	IntentEventLookup    Intent = "event_lookup"
	IntentWeatherCheck   Intent = "weather_check"
	IntentGeneral        Intent = "general"
)

// QueryAnalysisResult is the classified view of one user query. Computed
// once per request and immutable afterwards.
type QueryAnalysisResult struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Locations  []string `json:"locations,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
	Timeframes []string `json:"timeframes,omitempty"`

	WantsMap     bool `json:"wantsMap"`
	WantsDensity bool `json:"wantsDensity"`
	WantsEvents  bool `json:"wantsEvents"`
	WantsWeather bool `json:"wantsWeather"`

	SuggestedAgents []string `json:"suggestedAgents,omitempty"`
}
