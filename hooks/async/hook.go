// usage:
//
//	import (
//	    asynchook "github.com/unkn0wn-root/entitycache/hooks/async"
//	    sloghooks "github.com/unkn0wn-root/entitycache/hooks/slog"
//	)
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    GateWaitOver: 50 * time.Millisecond, // only log slow gate acquisitions
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := entitycache.New(entitycache.Options{
//	    Store: st,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/codec"
)

// Hooks forwards events to inner on worker goroutines. When the queue is full
// events are dropped and counted, so the cache never blocks on a slow sink.
type Hooks struct {
	inner   entitycache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ entitycache.Hooks = (*Hooks)(nil)

func New(inner entitycache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are
// dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) RemoteError(op, k string, err error) {
	h.try(func() { h.inner.RemoteError(op, k, err) })
}
func (h *Hooks) PartialWrite(op, k string, n int, err error) {
	h.try(func() { h.inner.PartialWrite(op, k, n, err) })
}
func (h *Hooks) TypeMismatch(k, f string, want codec.Kind) {
	h.try(func() { h.inner.TypeMismatch(k, f, want) })
}
func (h *Hooks) GateWait(op string, d time.Duration) { h.try(func() { h.inner.GateWait(op, d) }) }
