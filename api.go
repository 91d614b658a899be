package entitycache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/entitycache/codec"
	"github.com/unkn0wn-root/entitycache/gate"
	"github.com/unkn0wn-root/entitycache/store"
)

// DefaultNamespace tags every key when Options.Namespace is empty.
const DefaultNamespace = "EntityCache"

// Entity is the primary hash of one entity, decoded heuristically, and its
// last-activity timestamp.
type Entity struct {
	ID        uint32
	Fields    map[string]codec.Value
	Timestamp time.Time
}

// Record is one row of a full-cache enumeration.
type Record struct {
	ID        uint32
	Key       string
	Field     string
	Value     codec.Value
	Timestamp time.Time
}

// Cache is the typed entity cache. Argument errors are returned before any
// round trip; store errors are returned unmodified, even when earlier round
// trips of the same call were already applied.
type Cache interface {
	// GetField reads one field of the sub-hash key.
	GetField(ctx context.Context, id uint32, key, field string) (float64, error)
	// GetMap reads the whole sub-hash key; empty when it does not exist.
	GetMap(ctx context.Context, id uint32, key string) (map[string]float64, error)
	// GetValue reads primary-hash field key as kind, or the whole sub-hash key
	// when kind is codec.KindMap.
	GetValue(ctx context.Context, id uint32, key string, kind codec.Kind) (codec.Value, error)
	// GetAllKeys returns a snapshot of the key index.
	GetAllKeys(ctx context.Context) (map[string]struct{}, error)
	// GetEntity reads the primary hash and timestamp of id. ErrNotFound when id
	// has no timestamp.
	GetEntity(ctx context.Context, id uint32) (Entity, error)

	// SetEntity writes scalars to the primary hash in one round trip and each
	// map-valued entry to its own sub-hash with replace semantics.
	SetEntity(ctx context.Context, id uint32, fields map[string]codec.Value) error
	SetValue(ctx context.Context, id uint32, key string, v codec.Value) error
	SetBool(ctx context.Context, id uint32, key string, v bool) error
	SetInt(ctx context.Context, id uint32, key string, v int64) error
	SetUint(ctx context.Context, id uint32, key string, v uint64) error
	SetFloat(ctx context.Context, id uint32, key string, v float64) error
	SetString(ctx context.Context, id uint32, key string, v string) error
	// SetMap replaces sub-hash key: fields absent from m are removed.
	SetMap(ctx context.Context, id uint32, key string, m map[string]float64) error
	// UpdateMap merges m into sub-hash key: fields absent from m are kept.
	UpdateMap(ctx context.Context, id uint32, key string, m map[string]float64) error
	// SetSubField writes one field of sub-hash key. The key index is not
	// touched; the sub-hash is expected to exist already.
	SetSubField(ctx context.Context, id uint32, key, field string, v float64) error

	HasField(ctx context.Context, id uint32, key string) (bool, error)
	// GetTimestamp returns the zero time when id was never touched.
	GetTimestamp(ctx context.Context, id uint32) (time.Time, error)
	// MarkActive refreshes the timestamp of id without writing data.
	MarkActive(ctx context.Context, id uint32) error

	// Dump is declared but unsupported: it always fails with ErrNotSupported.
	Dump(ctx context.Context) ([]Record, error)

	// Close waits for in-flight operations, then closes the store.
	Close(ctx context.Context) error
}

// Options tune the cache. Only Store is required.
type Options struct {
	Store store.Store

	Namespace  string           // "" => DefaultNamespace
	Gate       gate.Gate        // nil => gate.New(GatePolicy)
	GatePolicy gate.Policy      // used only when Gate is nil; zero => gate.Full
	Logger     Logger           // nil => NopLogger
	Hooks      Hooks            // nil => NopHooks
	Now        func() time.Time // clock for timestamps; nil => time.Now
}

func New(opts Options) (Cache, error) {
	return newCache(opts)
}

// Gettable lists the Go types Get can return.
type Gettable interface {
	bool | int64 | uint64 | float64 | string | map[string]float64
}

// Get reads primary-hash field key as T, or the whole sub-hash key when T is
// map[string]float64.
func Get[T Gettable](ctx context.Context, c Cache, id uint32, key string) (T, error) {
	var zero T
	v, err := c.GetValue(ctx, id, key, kindOf[T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.Any().(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %s", ErrTypeMismatch, v.Kind())
	}
	return out, nil
}

func kindOf[T Gettable]() codec.Kind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return codec.KindBool
	case int64:
		return codec.KindInt
	case uint64:
		return codec.KindUint
	case float64:
		return codec.KindDouble
	case string:
		return codec.KindString
	default:
		return codec.KindMap
	}
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
