package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/codec"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	MismatchEvery uint64
	// Gate waits shorter than this are not logged; 0 = log none.
	GateWaitOver time.Duration
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	mismatchCtr atomic.Uint64
}

var _ entitycache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) RemoteError(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("entitycache.remote_error",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) PartialWrite(op, storageKey string, completed int, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("entitycache.partial_write",
		"op", op,
		"key", h.redact(storageKey),
		"completed", completed,
		"err", err)
}

func (h *Hooks) TypeMismatch(storageKey, field string, want codec.Kind) {
	if h.l == nil || !sample(h.opts.MismatchEvery, &h.mismatchCtr) {
		return
	}
	h.l.Debug("entitycache.type_mismatch",
		"key", h.redact(storageKey),
		"field", field,
		"want", want.String())
}

func (h *Hooks) GateWait(op string, waited time.Duration) {
	if h.l == nil || h.opts.GateWaitOver <= 0 || waited < h.opts.GateWaitOver {
		return
	}
	h.l.Info("entitycache.gate_wait",
		"op", op,
		"waited", waited)
}
