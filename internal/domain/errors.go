package domain

import "errors"

// Sentinel errors forming the pipeline error taxonomy. Callers branch on
// these with errors.Is.
var (
	// ErrMissingCredential means a provider or agent API key is absent.
	// Fatal for the call that needed it; never retried.
	ErrMissingCredential = errors.New("missing provider credential")

	// ErrRateLimited means the provider answered HTTP 429 and bounded
	// retries were exhausted.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrProvider covers any other non-2xx provider response. Not retried.
	ErrProvider = errors.New("provider error")

	// ErrMalformedPayload means an upstream payload could not be parsed
	// into an expected shape. Treated as "no data from this source".
	ErrMalformedPayload = errors.New("malformed upstream payload")

	// ErrToolNotFound means a requested tool id has no implementation.
	ErrToolNotFound = errors.New("tool not found")

	// ErrRecursionRejected means a planning meta-tool was invoked from
	// within tool execution.
	ErrRecursionRejected = errors.New("recursion prevented")
)
