package cache

import "strings"

// Key patterns used by the cache adapters.
const (
	UserPattern       = "users"
	ConnectionPattern = "connections"
)

// GenerateKey builds a cache key in the form "<pattern>:<id>".
func GenerateKey(id, pattern string) string {
	return pattern + ":" + id
}

// GetID extracts the id from a key produced by GenerateKey with the same pattern.
func GetID(key, pattern string) string {
	return strings.TrimPrefix(key, pattern+":")
}
