package health

import "context"

// CachePinger checks key-value store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// AgentChecker checks generation agent availability.
type AgentChecker interface {
	HealthCheck(ctx context.Context) error
}
