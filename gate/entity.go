package gate

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// holders bounds concurrent shared holders of a per-entity gate; Exclusive
// takes all of it.
const holders = 1 << 30

type entityLock struct {
	sem  *semaphore.Weighted
	refs int
}

// perEntityGate hands out one lock per entity id. Idle locks are dropped so the
// table only holds ids with operations waiting or in flight.
type perEntityGate struct {
	shared *semaphore.Weighted

	mu    sync.Mutex
	locks map[uint32]*entityLock
}

func NewPerEntity() Gate {
	return &perEntityGate{
		shared: semaphore.NewWeighted(holders),
		locks:  make(map[uint32]*entityLock),
	}
}

func (g *perEntityGate) Entity(ctx context.Context, id uint32) (Release, error) {
	if err := g.shared.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	l := g.ref(id)
	if err := l.sem.Acquire(ctx, 1); err != nil {
		g.unref(id)
		g.shared.Release(1)
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.sem.Release(1)
			g.unref(id)
			g.shared.Release(1)
		})
	}, nil
}

func (g *perEntityGate) Keyless(ctx context.Context) (Release, error) {
	return acquire(ctx, g.shared, 1)
}

func (g *perEntityGate) Exclusive(ctx context.Context) (Release, error) {
	return acquire(ctx, g.shared, holders)
}

func (g *perEntityGate) ref(id uint32) *entityLock {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[id]
	if !ok {
		l = &entityLock{sem: semaphore.NewWeighted(1)}
		g.locks[id] = l
	}
	l.refs++
	return l
}

func (g *perEntityGate) unref(id uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l := g.locks[id]
	l.refs--
	if l.refs == 0 {
		delete(g.locks, id)
	}
}

// size reports how many ids currently have a lock entry.
func (g *perEntityGate) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
