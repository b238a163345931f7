// Package pipeline orchestrates query processing: analysis, tool
// execution, generation, and a fallback chain that either produces a real
// map or honestly reports none. A nil map is a valid terminal outcome;
// geometry is never fabricated to avoid it.
package pipeline

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/metrics"
	"github.com/geopulse-ai/geopulse/internal/usecase/analyze"
	"github.com/geopulse-ai/geopulse/internal/usecase/extract"
	"github.com/geopulse-ai/geopulse/internal/usecase/synth"
)

// SeedSearchConfig bounds the deterministic last-resort search.
type SeedSearchConfig struct {
	RadiusM  int
	Category string
	Limit    int
}

// MapGuarantee runs the ordered fallback chain. Stages are independent:
// one stage's failure is absorbed and the machine advances.
type MapGuarantee struct {
	mapAgent domain.Generator
	searcher Searcher
	seed     SeedSearchConfig
	logger   *zap.Logger
	now      func() time.Time
}

// GuaranteeResult carries the produced map, the stage that produced it
// (StageExhausted when none did), and the stage's provenance contribution.
type GuaranteeResult struct {
	Map    *domain.FeatureCollection
	Stage  Stage
	Tools  []string
	Agents []string
}

// NewMapGuarantee creates the fallback chain. mapAgent and searcher may be
// nil; their stages then always miss.
func NewMapGuarantee(mapAgent domain.Generator, searcher Searcher, seed SeedSearchConfig, logger *zap.Logger) *MapGuarantee {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapGuarantee{
		mapAgent: mapAgent,
		searcher: searcher,
		seed:     seed,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureMap walks the stages in order and returns the first non-empty
// FeatureCollection, or a nil map with Stage == StageExhausted.
func (g *MapGuarantee) EnsureMap(
	ctx context.Context,
	userText string,
	extracted extract.Extracted,
	records map[string]domain.ToolInvocationRecord,
) GuaranteeResult {
	state := next(StageNotStarted, false)

	for !state.Terminal() {
		fc, tools, agents := g.attempt(ctx, state, userText, extracted, records)
		ok := fc != nil && len(fc.Features) > 0

		result := "miss"
		if ok {
			result = "success"
		}
		metrics.PipelineStagesTotal.WithLabelValues(state.String(), result).Inc()

		if ok {
			g.logger.Info("Map stage produced features",
				zap.String("stage", state.String()),
				zap.Int("features", len(fc.Features)))
			return GuaranteeResult{Map: fc, Stage: state, Tools: tools, Agents: agents}
		}
		state = next(state, false)
	}

	g.logger.Info("Map fallback chain exhausted")
	return GuaranteeResult{Stage: StageExhausted}
}

func (g *MapGuarantee) attempt(
	ctx context.Context,
	stage Stage,
	userText string,
	extracted extract.Extracted,
	records map[string]domain.ToolInvocationRecord,
) (*domain.FeatureCollection, []string, []string) {
	switch stage {
	case StagePromote:
		// Already-decoded map data passes through unchanged.
		return extracted.MapData, nil, nil
	case StageSynthesize:
		return g.synthesizeFromRecords(records)
	case StageMapAgent:
		return g.generateMap(ctx, userText)
	case StageSeedSearch:
		return g.seedSearch(ctx, userText)
	default:
		return nil, nil, nil
	}
}

func (g *MapGuarantee) synthesizeFromRecords(records map[string]domain.ToolInvocationRecord) (*domain.FeatureCollection, []string, []string) {
	raw := make(map[string]any, len(records))
	for id, rec := range records {
		if rec.Err == "" && rec.Result != nil {
			raw[id] = rec.Result
		}
	}
	if len(raw) == 0 {
		return nil, nil, nil
	}

	tools := make([]string, 0, len(raw))
	for id := range raw {
		tools = append(tools, id)
	}
	sort.Strings(tools)

	return synth.Synthesize(raw, g.now()), tools, nil
}

func (g *MapGuarantee) generateMap(ctx context.Context, userText string) (*domain.FeatureCollection, []string, []string) {
	if g.mapAgent == nil {
		return nil, nil, nil
	}

	text, err := g.mapAgent.Generate(ctx, userText)
	if err != nil {
		g.logger.Warn("Map agent generation failed", zap.Error(err))
		return nil, nil, nil
	}

	ex := extract.FromText(text)
	if ex.MapData == nil {
		return nil, nil, nil
	}

	// Agent output carries no provenance or metadata of its own.
	for i := range ex.MapData.Features {
		if ex.MapData.Features[i].Source() == "" {
			if ex.MapData.Features[i].Properties == nil {
				ex.MapData.Features[i].Properties = map[string]any{}
			}
			ex.MapData.Features[i].Properties[domain.PropSource] = g.mapAgent.Name()
		}
	}
	ex.MapData.Finalize(g.now())

	return ex.MapData, nil, []string{g.mapAgent.Name()}
}

func (g *MapGuarantee) seedSearch(ctx context.Context, userText string) (*domain.FeatureCollection, []string, []string) {
	if g.searcher == nil {
		return nil, nil, nil
	}

	near := analyze.LocationPhrase(userText)
	places, err := g.searcher.SearchPOI(ctx, domain.SearchQuery{
		Text:    g.seed.Category,
		Near:    near,
		RadiusM: g.seed.RadiusM,
		Limit:   g.seed.Limit,
	})
	if err != nil {
		g.logger.Warn("Seed search failed", zap.String("near", near), zap.Error(err))
		return nil, nil, nil
	}
	if len(places) == 0 {
		return nil, nil, nil
	}

	fc := synth.Synthesize(map[string]any{
		domain.ToolPOISearch: map[string]any{"places": places},
	}, g.now())

	return fc, []string{domain.ToolPOISearch}, nil
}
