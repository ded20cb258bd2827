// Package cache provides query-result caching backends.
package cache

// Cache is the interface for query-result caching. Values are opaque
// strings (the orchestrator stores JSON-encoded answers) so backends stay
// schema-agnostic.
type Cache interface {
	// Get retrieves a cached value. Returns empty string and false if not
	// found or expired.
	Get(key string) (string, bool)

	// Set stores a value, overwriting any prior entry for the key.
	Set(key string, value string) error

	// Clear removes all entries unconditionally.
	Clear() error

	// Len returns the number of cached entries (best-effort for remote
	// backends).
	Len() int
}
