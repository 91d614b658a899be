// Package store defines the remote hash-store contract used by entitycache.
//
// A Store holds string-valued hashes and string sets. Field values are opaque to
// the store; typing is the codec's job. Implementations must be safe for
// concurrent use, although the cache serializes its own calls through a gate.
//
// Important: keys "<ns>:*", "<ns>-Keys" and "<ns>-TimeStamps" are owned by the
// cache for its namespace. Other writers sharing the store must follow the same
// layout and field encoding.
package store

import (
	"context"
)

// Store is a minimal hash/set key-value service.
type Store interface {
	// HGet returns (value, true, nil) when the field exists and ("", false, nil)
	// when the key or field is missing.
	HGet(ctx context.Context, key, field string) (string, bool, error)

	// HGetAll returns every field of a hash; an empty map for a missing key.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HSet writes all fields in one round trip. Fields not named are untouched.
	// An empty map is a no-op.
	HSet(ctx context.Context, key string, fields map[string]string) error

	// HExists reports whether a field is present in a hash.
	HExists(ctx context.Context, key, field string) (bool, error)

	// Del removes whole keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// SAdd adds members to a set, creating it if needed.
	SAdd(ctx context.Context, key string, members ...string) error

	// SMembers returns every member of a set; empty for a missing key.
	SMembers(ctx context.Context, key string) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
