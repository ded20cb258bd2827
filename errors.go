package mwalimu

import "fmt"

// UpstreamError indicates a failure of an external collaborator (the
// retrieval index or the generation service): network errors, timeouts,
// quota rejections, or malformed responses.
type UpstreamError struct {
	Service   string // "openai", "pinecone", ...
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure. Cache failures never
// propagate out of the orchestrator; they degrade to cache misses.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates a malformed request: a missing or empty
// required field. It is raised before any external call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}
