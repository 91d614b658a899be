package entitycache

import (
	"time"

	"github.com/unkn0wn-root/entitycache/codec"
)

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them while holding its gate.
type Hooks interface {
	// A round trip to the store failed. op is the public operation name.
	RemoteError(op, storageKey string, err error)

	// A multi-round-trip write failed after `completed` round trips were
	// already applied and are now visible without the rest.
	PartialWrite(op, storageKey string, completed int, err error)

	// A stored field could not be decoded as the requested kind.
	TypeMismatch(storageKey, field string, want codec.Kind)

	// Time an operation spent waiting to acquire the gate.
	GateWait(op string, waited time.Duration)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) RemoteError(string, string, error)       {}
func (NopHooks) PartialWrite(string, string, int, error) {}
func (NopHooks) TypeMismatch(string, string, codec.Kind) {}
func (NopHooks) GateWait(string, time.Duration)          {}
