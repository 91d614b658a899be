package entitycache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/entitycache/codec"
)

var (
	ErrInvalidArgument = errors.New("entitycache: invalid argument")
	ErrNotSupported    = errors.New("entitycache: operation not supported")
	ErrNotFound        = errors.New("entitycache: not found")
	ErrClosed          = errors.New("entitycache: cache is closed")

	// ErrTypeMismatch and ErrUnsupportedKind are the codec's type errors,
	// re-exported so callers need not import codec to match them.
	ErrTypeMismatch    = codec.ErrTypeMismatch
	ErrUnsupportedKind = codec.ErrUnsupportedKind
)

// ArgumentError reports a missing or blank required argument. It is returned
// before any round trip to the store.
type ArgumentError struct {
	Op     string
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("entitycache: %s: invalid argument %s: %s", e.Op, e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }
