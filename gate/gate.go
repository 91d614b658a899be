// Package gate provides the serialization policies a cache instance uses to
// order its operations.
//
//   - Full: one operation at a time, end to end (default).
//   - PerEntity: operations on different entity ids may overlap; operations on
//     the same id are totally ordered.
//   - None: no ordering; the caller takes responsibility.
//
// Every policy supports Exclusive, which waits until nothing else holds the
// gate. Closing a cache takes it so resources are never released mid-operation.
package gate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Release returns a held gate. It must be called exactly once.
type Release func()

// Gate orders operations on one cache instance. Acquisition blocks until the
// gate is free or ctx is done. Gates are not reentrant: acquiring again while
// holding a release deadlocks under Full.
type Gate interface {
	// Entity admits an operation touching entity id.
	Entity(ctx context.Context, id uint32) (Release, error)
	// Keyless admits an operation not bound to one entity (e.g. listing keys).
	Keyless(ctx context.Context) (Release, error)
	// Exclusive admits a caller once no other holder remains.
	Exclusive(ctx context.Context) (Release, error)
}

type Policy int

const (
	Full Policy = iota
	PerEntity
	None
)

var policyNames = map[Policy]string{Full: "full", PerEntity: "per-entity", None: "none"}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy accepts "full", "per-entity" and "none" (case-insensitive).
// The empty string selects Full.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Full, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return Full, fmt.Errorf("gate: unknown policy %q", s)
}

// New returns a fresh gate for p. Unknown policies get Full.
func New(p Policy) Gate {
	switch p {
	case PerEntity:
		return NewPerEntity()
	case None:
		return nopGate{}
	default:
		return NewFull()
	}
}

func acquire(ctx context.Context, s *semaphore.Weighted, n int64) (Release, error) {
	if err := s.Acquire(ctx, n); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { s.Release(n) }) }, nil
}

// fullGate is a single exclusive gate shared by every operation.
type fullGate struct {
	sem *semaphore.Weighted
}

func NewFull() Gate { return &fullGate{sem: semaphore.NewWeighted(1)} }

func (g *fullGate) Entity(ctx context.Context, _ uint32) (Release, error) {
	return acquire(ctx, g.sem, 1)
}
func (g *fullGate) Keyless(ctx context.Context) (Release, error)   { return acquire(ctx, g.sem, 1) }
func (g *fullGate) Exclusive(ctx context.Context) (Release, error) { return acquire(ctx, g.sem, 1) }

type nopGate struct{}

func (nopGate) Entity(context.Context, uint32) (Release, error) { return func() {}, nil }
func (nopGate) Keyless(context.Context) (Release, error)        { return func() {}, nil }
func (nopGate) Exclusive(context.Context) (Release, error)      { return func() {}, nil }
