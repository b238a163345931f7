package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/usecase/analyze"
	"github.com/geopulse-ai/geopulse/internal/usecase/dispatch"
	"github.com/geopulse-ai/geopulse/internal/usecase/extract"
)

// degradedResponse substitutes for narrative text when the domain agent is
// unavailable but providers still produced data.
const degradedResponse = "Analysis narration is temporarily unavailable. Partial results from location providers are attached."

// Service processes one query end to end: classification, tool planning
// and execution, narrative generation, extraction, and the map fallback
// chain. Stateless per request.
type Service struct {
	domainAgent     domain.Generator
	executor        Executor
	guarantee       *MapGuarantee
	insightsRadiusM int
	logger          *zap.Logger
	now             func() time.Time
}

// NewService wires the processing pipeline. insightsRadiusM is the default
// circle radius for density calls planned from routing flags.
func NewService(
	domainAgent domain.Generator,
	executor Executor,
	guarantee *MapGuarantee,
	insightsRadiusM int,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		domainAgent:     domainAgent,
		executor:        executor,
		guarantee:       guarantee,
		insightsRadiusM: insightsRadiusM,
		logger:          logger,
		now:             time.Now,
	}
}

// Process runs one query through the pipeline. The outcome always carries
// response text; a nil MapData is a valid result, not an error.
func (s *Service) Process(ctx context.Context, query string) domain.PipelineOutcome {
	start := s.now()
	analysis := analyze.Query(query)

	records := s.runTools(ctx, query, analysis)

	response, err := s.generate(ctx, query, records)
	if err != nil {
		// Missing credentials cannot be retried or degraded around.
		return s.failure(analysis, err, start)
	}

	extracted := extract.Extract(response, recordList(records))

	toolsUsed := recordIDs(records)
	agentsUsed := []string{s.domainAgent.Name()}

	var mapData *domain.FeatureCollection
	if analysis.WantsMap {
		res := s.guarantee.EnsureMap(ctx, query, extracted, records)
		mapData = res.Map
		toolsUsed = mergeDistinct(toolsUsed, res.Tools)
		agentsUsed = mergeDistinct(agentsUsed, res.Agents)
	} else if extracted.MapData != nil {
		mapData = extracted.MapData
	}

	if response == "" {
		response = degradedResponse
	}

	end := s.now()
	return domain.PipelineOutcome{
		Response:   response,
		Analysis:   &analysis,
		MapData:    mapData,
		ToolsUsed:  toolsUsed,
		AgentsUsed: agentsUsed,
		Success:    true,
		ElapsedMS:  end.Sub(start).Milliseconds(),
		Timestamp:  end,
	}
}

// runTools plans tool requests from the routing flags and executes them.
// A density call needs an anchor coordinate, so it is planned from the
// search results in a second batch.
func (s *Service) runTools(ctx context.Context, query string, analysis domain.QueryAnalysisResult) map[string]domain.ToolInvocationRecord {
	near := ""
	if len(analysis.Locations) > 0 {
		near = analysis.Locations[0]
	} else {
		near = analyze.LocationPhrase(query)
	}

	var reqs []dispatch.Request
	if analysis.WantsMap || analysis.WantsDensity {
		reqs = append(reqs, dispatch.Request{
			Tool: domain.ToolPOISearch,
			Args: mustArgs(map[string]any{
				"query": searchText(query, analysis),
				"near":  near,
			}),
		})
	}
	if analysis.WantsEvents {
		reqs = append(reqs, dispatch.Request{
			Tool: domain.ToolLocalEvents,
			Args: mustArgs(map[string]any{"near": near}),
		})
	}
	if analysis.WantsWeather {
		reqs = append(reqs, dispatch.Request{
			Tool: domain.ToolWeather,
			Args: mustArgs(map[string]any{"near": near}),
		})
	}
	if len(reqs) == 0 {
		return map[string]domain.ToolInvocationRecord{}
	}

	records := s.executor.Execute(ctx, reqs)

	if analysis.WantsDensity {
		if lat, lon, ok := anchorCoords(records[domain.ToolPOISearch]); ok {
			followUp := s.executor.Execute(ctx, []dispatch.Request{{
				Tool: domain.ToolPlaceInsights,
				Args: mustArgs(map[string]any{
					"latitude":      lat,
					"longitude":     lon,
					"radiusM":       s.insightsRadiusM,
					"includePlaces": true,
					"analyze":       true,
				}),
			}})
			for id, rec := range followUp {
				records[id] = rec
			}
		} else {
			s.logger.Debug("No anchor coordinate for density call")
		}
	}
	return records
}

// generate produces the narrative response. Provider-level failures
// degrade to empty text; a missing credential is fatal.
func (s *Service) generate(ctx context.Context, query string, records map[string]domain.ToolInvocationRecord) (string, error) {
	prompt := query
	if len(records) > 0 {
		findings, err := json.Marshal(recordList(records))
		if err == nil {
			prompt = query + "\n\nTool findings:\n" + string(findings)
		}
	}

	text, err := s.domainAgent.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return "", err
		}
		s.logger.Warn("Domain agent generation failed", zap.Error(err))
		return "", nil
	}
	return text, nil
}

func (s *Service) failure(analysis domain.QueryAnalysisResult, err error, start time.Time) domain.PipelineOutcome {
	s.logger.Error("Query processing failed", zap.Error(err))
	end := s.now()
	return domain.PipelineOutcome{
		Response:  fmt.Sprintf("error processing location query: %s", err.Error()),
		Analysis:  &analysis,
		Success:   false,
		ElapsedMS: end.Sub(start).Milliseconds(),
		Timestamp: end,
	}
}

// searchText picks the search terms for the planned POI call: the first
// recognized category, else the raw query.
func searchText(query string, analysis domain.QueryAnalysisResult) string {
	if len(analysis.Categories) > 0 {
		return analysis.Categories[0]
	}
	return strings.TrimSpace(query)
}

// anchorCoords pulls the first usable coordinate out of a search record.
func anchorCoords(rec domain.ToolInvocationRecord) (lat, lon float64, ok bool) {
	if rec.Err != "" || rec.Result == nil {
		return 0, 0, false
	}
	payload, ok := rec.Result.(map[string]any)
	if !ok {
		return 0, 0, false
	}
	places, ok := payload["places"].([]domain.Place)
	if !ok {
		return 0, 0, false
	}
	for _, p := range places {
		if p.HasCoords {
			return p.Latitude, p.Longitude, true
		}
	}
	return 0, 0, false
}

// recordList flattens the record map into a deterministic slice.
func recordList(records map[string]domain.ToolInvocationRecord) []domain.ToolInvocationRecord {
	if len(records) == 0 {
		return nil
	}
	list := make([]domain.ToolInvocationRecord, 0, len(records))
	for _, rec := range records {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Tool < list[j].Tool })
	return list
}

func recordIDs(records map[string]domain.ToolInvocationRecord) []string {
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func mergeDistinct(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			base = append(base, v)
		}
	}
	return base
}

func mustArgs(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
