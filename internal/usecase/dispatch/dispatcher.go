// Package dispatch executes batches of tool requests against a fixed
// implementation registry.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// ToolFunc is one tool implementation. args is the raw argument mapping.
type ToolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Request is one {toolId, arguments} pair. Tool may be any recognized
// alias spelling.
type Request struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Dispatcher executes tool requests with per-call error isolation. It is
// not re-entrant: requests naming a planning meta-tool are rejected.
type Dispatcher struct {
	registry map[string]ToolFunc
	logger   *zap.Logger
}

// New creates a dispatcher over a fixed registry keyed by canonical ids.
func New(registry map[string]ToolFunc, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Execute runs the requests in order and returns one record per canonical
// id; a later duplicate overwrites an earlier one. A single failure never
// aborts the batch.
func (d *Dispatcher) Execute(ctx context.Context, reqs []Request) map[string]domain.ToolInvocationRecord {
	records := make(map[string]domain.ToolInvocationRecord, len(reqs))

	for _, req := range reqs {
		canonical := domain.CanonicalToolID(req.Tool)
		rec := domain.ToolInvocationRecord{Tool: canonical, Args: req.Args}

		switch {
		case domain.IsMetaTool(canonical):
			d.logger.Warn("Rejected re-entrant tool call", zap.String("tool", canonical))
			rec.Err = domain.ErrRecursionRejected.Error()
		default:
			fn, ok := d.registry[canonical]
			if !ok {
				// Unknown ids fail lookup harmlessly: an empty result, not
				// an error.
				d.logger.Debug("No implementation for tool",
					zap.String("tool", canonical), zap.Error(domain.ErrToolNotFound))
				break
			}
			result, err := d.invoke(ctx, canonical, fn, req.Args)
			if err != nil {
				rec.Err = err.Error()
			} else {
				rec.Result = result
			}
		}

		records[canonical] = rec
	}
	return records
}

// invoke isolates one tool call, converting panics into failure reasons.
func (d *Dispatcher) invoke(ctx context.Context, tool string, fn ToolFunc, args json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Tool implementation panicked",
				zap.String("tool", tool), zap.Any("panic", r))
			result = nil
			err = fmt.Errorf("tool %s panicked: %v", tool, r)
		}
	}()
	return fn(ctx, args)
}
