package domain

import (
	"encoding/json"
	"time"
)

// ToolInvocationRecord is one executed tool request. Tool always holds the
// canonical id. Exactly one of Result / Err is meaningful: a failed call
// carries the failure reason string and a nil result.
type ToolInvocationRecord struct {
	Tool   string          `json:"tool"`
	Args   json.RawMessage `json:"args,omitempty"`
	Result any             `json:"result,omitempty"`
	Err    string          `json:"error,omitempty"`
}

// PipelineOutcome is the single artifact a request produces. Response is
// always populated, even on failure. A nil MapData is a valid, non-error
// outcome.
type PipelineOutcome struct {
	Response   string               `json:"response"`
	Analysis   *QueryAnalysisResult `json:"analysis,omitempty"`
	MapData    *FeatureCollection   `json:"mapData,omitempty"`
	ToolsUsed  []string             `json:"toolsUsed,omitempty"`
	AgentsUsed []string             `json:"agentsUsed,omitempty"`
	Success    bool                 `json:"success"`
	ElapsedMS  int64                `json:"elapsedMs"`
	Timestamp  time.Time            `json:"timestamp"`
}
