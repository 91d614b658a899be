package asynchook

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/entitycache/codec"
)

type countHooks struct {
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (c *countHooks) add(ev string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *countHooks) RemoteError(op, _ string, _ error)         { c.add("remote:" + op) }
func (c *countHooks) PartialWrite(op, _ string, _ int, _ error) { c.add("partial:" + op) }
func (c *countHooks) TypeMismatch(_, f string, _ codec.Kind)    { c.add("mismatch:" + f) }
func (c *countHooks) GateWait(op string, _ time.Duration)       { c.add("wait:" + op) }

func TestForwardsAndDrainsOnClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)

	h.RemoteError("GetMap", "EntityCache:1:v", errors.New("x"))
	h.PartialWrite("SetMap", "EntityCache-Keys", 2, errors.New("x"))
	h.TypeMismatch("EntityCache:1", "flag", codec.KindBool)
	h.GateWait("SetInt", time.Millisecond)
	h.Close()

	if len(inner.events) != 4 {
		t.Fatalf("events = %v", inner.events)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped = %d", h.Dropped())
	}

	h.GateWait("late", 0)
	h.Close()
	if h.Dropped() != 1 {
		t.Fatalf("event after close not dropped")
	}
}

func TestDropsWhenQueueFull(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// one event is held by the worker, one fills the queue, the rest drop
	for i := 0; i < 10; i++ {
		h.GateWait("op", 0)
	}
	if h.Dropped() < 8 {
		t.Fatalf("dropped = %d, want >= 8", h.Dropped())
	}
	close(inner.block)
	h.Close()
}
