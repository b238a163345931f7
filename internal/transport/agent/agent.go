// Package agent implements the natural-language generation collaborator
// over the OpenAI-compatible chat completion API.
package agent

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/metrics"
)

const domainSystemPrompt = `You are a location-intelligence analyst.
Answer the user's question about places, markets, and areas truthfully,
using only knowledge you are confident about. When structured data would
help the caller render a map or charts, embed a single JSON object in a
fenced json code block. Use an "analysis" field for findings and a
"mapData" field holding a GeoJSON FeatureCollection when you can state
real coordinates. Never invent coordinates; omit mapData instead.`

const mapSystemPrompt = `You generate map data for a location query.
Respond with exactly one fenced json code block containing a GeoJSON
FeatureCollection: {"type":"FeatureCollection","features":[...]}. Each
feature must be a Point with [longitude, latitude] coordinates you are
confident are real, and properties including "name". If you cannot name
real places with real coordinates, return a FeatureCollection with an
empty features array. No prose outside the code block.`

// Generator calls a chat model with a fixed system prompt and returns the
// raw completion text. Implements domain.Generator.
type Generator struct {
	client       *openai.Client
	name         string
	model        string
	temperature  float32
	systemPrompt string
	apiKey       string
	logger       *zap.Logger
}

// Config holds the generation collaborator settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

var _ domain.Generator = (*Generator)(nil)

// NewDomainAgent creates the analysis-prose agent.
func NewDomainAgent(cfg *Config) *Generator {
	return newGenerator(cfg, "domain_agent", domainSystemPrompt)
}

// NewMapAgent creates the map-specialized agent used by the fallback chain.
func NewMapAgent(cfg *Config) *Generator {
	return newGenerator(cfg, "map_agent", mapSystemPrompt)
}

func newGenerator(cfg *Config, name, systemPrompt string) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:       openai.NewClientWithConfig(clientCfg),
		name:         name,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		systemPrompt: systemPrompt,
		apiKey:       cfg.APIKey,
		logger:       logger,
	}
}

// Name returns the provenance tag for this agent.
func (g *Generator) Name() string { return g.name }

// HealthCheck verifies the agent is usable without spending tokens.
func (g *Generator) HealthCheck(_ context.Context) error {
	if g.apiKey == "" {
		return fmt.Errorf("agent api key is not configured: %w", domain.ErrMissingCredential)
	}
	return nil
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("agent api key is not configured: %w", domain.ErrMissingCredential)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		metrics.AgentRequestsTotal.WithLabelValues(g.name, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.AgentRequestsTotal.WithLabelValues(g.name, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrMalformedPayload)
	}

	metrics.AgentRequestsTotal.WithLabelValues(g.name, "success").Inc()
	if resp.Usage.TotalTokens > 0 {
		metrics.AgentTokensTotal.WithLabelValues(g.name, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.AgentTokensTotal.WithLabelValues(g.name, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.AgentTokensTotal.WithLabelValues(g.name, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable error from the API response.
// Rate-limit responses map to domain.ErrRateLimited, everything else to
// domain.ErrProvider.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		wrap := domain.ErrProvider
		if apiErr.HTTPStatusCode == 429 {
			wrap = domain.ErrRateLimited
		}
		return fmt.Errorf("agent API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("agent API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrProvider)
	}

	return fmt.Errorf("agent request failed: %w", domain.ErrProvider)
}
