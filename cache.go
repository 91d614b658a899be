package entitycache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/entitycache/codec"
	"github.com/unkn0wn-root/entitycache/gate"
	"github.com/unkn0wn-root/entitycache/internal/keys"
	"github.com/unkn0wn-root/entitycache/store"
)

// timestampLayout is ISO-8601 with 100ns precision and a numeric offset.
// Parsing accepts any RFC 3339 form.
const timestampLayout = "2006-01-02T15:04:05.0000000-07:00"

type cache struct {
	ns    string
	store store.Store
	gate  gate.Gate
	log   Logger
	hooks Hooks
	now   func() time.Time

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ Cache = (*cache)(nil)

func newCache(opts Options) (*cache, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("entitycache: store is required")
	}
	ns := strings.TrimSpace(opts.Namespace)
	if opts.Namespace != "" && ns == "" {
		return nil, fmt.Errorf("entitycache: namespace is blank")
	}

	c := &cache{
		ns:    coalesce(ns, DefaultNamespace),
		store: opts.Store,
		now:   time.Now,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.gate = opts.Gate
	if c.gate == nil {
		c.gate = gate.New(opts.GatePolicy)
	}
	if opts.Now != nil {
		c.now = opts.Now
	}
	return c, nil
}

func (c *cache) GetField(ctx context.Context, id uint32, key, field string) (float64, error) {
	const op = "GetField"
	if err := checkNames(op, "key", key, "field", field); err != nil {
		return 0, err
	}
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return 0, err
	}
	defer release()

	k := keys.Sub(c.ns, id, key)
	raw, ok, err := c.store.HGet(ctx, k, field)
	if err != nil {
		return 0, c.readFailed(op, k, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: field %q of %s", ErrNotFound, field, k)
	}
	f, err := codec.ParseDouble(raw)
	if err != nil {
		return 0, c.mismatch(k, field, codec.KindDouble, err)
	}
	return f, nil
}

func (c *cache) GetMap(ctx context.Context, id uint32, key string) (map[string]float64, error) {
	const op = "GetMap"
	if err := checkNames(op, "key", key); err != nil {
		return nil, err
	}
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return nil, err
	}
	defer release()
	return c.readMap(ctx, op, id, key)
}

func (c *cache) readMap(ctx context.Context, op string, id uint32, key string) (map[string]float64, error) {
	k := keys.Sub(c.ns, id, key)
	raw, err := c.store.HGetAll(ctx, k)
	if err != nil {
		return nil, c.readFailed(op, k, err)
	}
	m, err := codec.DecodeMap(raw)
	if err != nil {
		return nil, c.mismatch(k, "", codec.KindDouble, err)
	}
	return m, nil
}

func (c *cache) GetValue(ctx context.Context, id uint32, key string, kind codec.Kind) (codec.Value, error) {
	const op = "GetValue"
	if err := checkNames(op, "key", key); err != nil {
		return codec.Value{}, err
	}
	if kind == codec.KindInvalid || kind > codec.KindMap {
		return codec.Value{}, fmt.Errorf("entitycache: %s: %w: %s", op, ErrUnsupportedKind, kind)
	}
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return codec.Value{}, err
	}
	defer release()

	if kind == codec.KindMap {
		m, err := c.readMap(ctx, op, id, key)
		if err != nil {
			return codec.Value{}, err
		}
		return codec.Map(m), nil
	}

	k := keys.Primary(c.ns, id)
	raw, ok, err := c.store.HGet(ctx, k, key)
	if err != nil {
		return codec.Value{}, c.readFailed(op, k, err)
	}
	if !ok {
		return codec.Value{}, fmt.Errorf("%w: field %q of %s", ErrNotFound, key, k)
	}
	v, err := codec.Decode(kind, raw)
	if err != nil {
		return codec.Value{}, c.mismatch(k, key, kind, err)
	}
	return v, nil
}

func (c *cache) GetAllKeys(ctx context.Context) (map[string]struct{}, error) {
	const op = "GetAllKeys"
	release, err := c.enter(ctx, op, c.gate.Keyless)
	if err != nil {
		return nil, err
	}
	defer release()

	k := keys.Index(c.ns)
	members, err := c.store.SMembers(ctx, k)
	if err != nil {
		return nil, c.readFailed(op, k, err)
	}
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

func (c *cache) GetEntity(ctx context.Context, id uint32) (Entity, error) {
	const op = "GetEntity"
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return Entity{}, err
	}
	defer release()

	ts, ok, err := c.readTimestamp(ctx, op, id)
	if err != nil {
		return Entity{}, err
	}
	if !ok {
		return Entity{}, fmt.Errorf("%w: entity %d has no timestamp", ErrNotFound, id)
	}
	k := keys.Primary(c.ns, id)
	raw, err := c.store.HGetAll(ctx, k)
	if err != nil {
		return Entity{}, c.readFailed(op, k, err)
	}
	return Entity{ID: id, Fields: codec.RecoverAll(raw), Timestamp: ts}, nil
}

func (c *cache) SetEntity(ctx context.Context, id uint32, fields map[string]codec.Value) error {
	const op = "SetEntity"
	if fields == nil {
		return &ArgumentError{Op: op, Arg: "fields", Reason: "nil map"}
	}

	scalars := make(map[string]string, len(fields))
	var subNames []string
	for name, v := range fields {
		if err := checkNames(op, "field name", name); err != nil {
			return err
		}
		if m, ok := v.AsMap(); ok {
			if err := checkMap(op, name, m); err != nil {
				return err
			}
			subNames = append(subNames, name)
			continue
		}
		raw, err := codec.Encode(v)
		if err != nil {
			return fmt.Errorf("entitycache: %s field %q: %w", op, name, err)
		}
		scalars[name] = raw
	}
	sort.Strings(subNames)

	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return err
	}
	defer release()

	w := c.writer(ctx, op)
	primary := keys.Primary(c.ns, id)
	if len(scalars) > 0 {
		if err := w.do(primary, func() error { return c.store.HSet(ctx, primary, scalars) }); err != nil {
			return err
		}
	}
	indexed := make([]string, 0, 1+len(subNames))
	indexed = append(indexed, primary)
	for _, name := range subNames {
		m, _ := fields[name].AsMap()
		sub := keys.Sub(c.ns, id, name)
		if err := w.replace(sub, m); err != nil {
			return err
		}
		indexed = append(indexed, sub)
	}
	return w.finish(id, indexed...)
}

func (c *cache) SetValue(ctx context.Context, id uint32, key string, v codec.Value) error {
	return c.setValue(ctx, "SetValue", id, key, v)
}

func (c *cache) SetBool(ctx context.Context, id uint32, key string, v bool) error {
	return c.setValue(ctx, "SetBool", id, key, codec.Bool(v))
}

func (c *cache) SetInt(ctx context.Context, id uint32, key string, v int64) error {
	return c.setValue(ctx, "SetInt", id, key, codec.Int(v))
}

func (c *cache) SetUint(ctx context.Context, id uint32, key string, v uint64) error {
	return c.setValue(ctx, "SetUint", id, key, codec.Uint(v))
}

func (c *cache) SetFloat(ctx context.Context, id uint32, key string, v float64) error {
	return c.setValue(ctx, "SetFloat", id, key, codec.Double(v))
}

func (c *cache) SetString(ctx context.Context, id uint32, key string, v string) error {
	return c.setValue(ctx, "SetString", id, key, codec.String(v))
}

func (c *cache) setValue(ctx context.Context, op string, id uint32, key string, v codec.Value) error {
	if err := checkNames(op, "key", key); err != nil {
		return err
	}
	raw, err := codec.Encode(v)
	if err != nil {
		return fmt.Errorf("entitycache: %s field %q: %w", op, key, err)
	}
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return err
	}
	defer release()

	w := c.writer(ctx, op)
	primary := keys.Primary(c.ns, id)
	if err := w.do(primary, func() error {
		return c.store.HSet(ctx, primary, map[string]string{key: raw})
	}); err != nil {
		return err
	}
	return w.finish(id, primary)
}

func (c *cache) SetMap(ctx context.Context, id uint32, key string, m map[string]float64) error {
	return c.writeMap(ctx, "SetMap", id, key, m, true)
}

func (c *cache) UpdateMap(ctx context.Context, id uint32, key string, m map[string]float64) error {
	return c.writeMap(ctx, "UpdateMap", id, key, m, false)
}

func (c *cache) writeMap(ctx context.Context, op string, id uint32, key string, m map[string]float64, replace bool) error {
	if err := checkNames(op, "key", key); err != nil {
		return err
	}
	if m == nil {
		return &ArgumentError{Op: op, Arg: "map", Reason: "nil map"}
	}
	if err := checkMap(op, key, m); err != nil {
		return err
	}
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return err
	}
	defer release()

	w := c.writer(ctx, op)
	sub := keys.Sub(c.ns, id, key)
	if replace {
		err = w.replace(sub, m)
	} else {
		err = w.do(sub, func() error { return c.store.HSet(ctx, sub, codec.EncodeMap(m)) })
	}
	if err != nil {
		return err
	}
	return w.finish(id, sub)
}

func (c *cache) SetSubField(ctx context.Context, id uint32, key, field string, v float64) error {
	const op = "SetSubField"
	if err := checkNames(op, "key", key, "field", field); err != nil {
		return err
	}
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return err
	}
	defer release()

	w := c.writer(ctx, op)
	sub := keys.Sub(c.ns, id, key)
	if err := w.do(sub, func() error {
		return c.store.HSet(ctx, sub, codec.EncodeMap(map[string]float64{field: v}))
	}); err != nil {
		return err
	}
	return w.finish(id)
}

func (c *cache) HasField(ctx context.Context, id uint32, key string) (bool, error) {
	const op = "HasField"
	if err := checkNames(op, "key", key); err != nil {
		return false, err
	}
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return false, err
	}
	defer release()

	k := keys.Primary(c.ns, id)
	ok, err := c.store.HExists(ctx, k, key)
	if err != nil {
		return false, c.readFailed(op, k, err)
	}
	return ok, nil
}

func (c *cache) GetTimestamp(ctx context.Context, id uint32) (time.Time, error) {
	const op = "GetTimestamp"
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return time.Time{}, err
	}
	defer release()

	ts, _, err := c.readTimestamp(ctx, op, id)
	return ts, err
}

func (c *cache) MarkActive(ctx context.Context, id uint32) error {
	const op = "MarkActive"
	release, err := c.enterEntity(ctx, op, id)
	if err != nil {
		return err
	}
	defer release()
	return c.writer(ctx, op).finish(id)
}

func (c *cache) Dump(context.Context) ([]Record, error) {
	return nil, fmt.Errorf("entitycache: Dump: %w", ErrNotSupported)
}

func (c *cache) Close(ctx context.Context) error {
	release, err := c.gate.Exclusive(ctx)
	if err != nil {
		return fmt.Errorf("entitycache: close: %w", err)
	}
	defer release()

	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if err := c.store.Close(ctx); err != nil {
			c.log.Error("store close failed", Fields{"err": err})
			c.closeErr = err
		}
	})
	return c.closeErr
}

func (c *cache) enterEntity(ctx context.Context, op string, id uint32) (gate.Release, error) {
	return c.enter(ctx, op, func(ctx context.Context) (gate.Release, error) {
		return c.gate.Entity(ctx, id)
	})
}

func (c *cache) enter(ctx context.Context, op string, acquire func(context.Context) (gate.Release, error)) (gate.Release, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	release, err := acquire(ctx)
	c.hooks.GateWait(op, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("entitycache: %s: acquire gate: %w", op, err)
	}
	// Close may have completed while we waited.
	if c.closed.Load() {
		release()
		return nil, ErrClosed
	}
	return release, nil
}

func (c *cache) readTimestamp(ctx context.Context, op string, id uint32) (time.Time, bool, error) {
	k := keys.Timestamps(c.ns)
	field := keys.TimestampField(id)
	raw, ok, err := c.store.HGet(ctx, k, field)
	if err != nil {
		return time.Time{}, false, c.readFailed(op, k, err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		c.hooks.TypeMismatch(k, field, codec.KindString)
		return time.Time{}, false, fmt.Errorf("entitycache: timestamp of %d: %w: %v", id, ErrTypeMismatch, err)
	}
	return ts, true, nil
}

func (c *cache) readFailed(op, storageKey string, err error) error {
	c.hooks.RemoteError(op, storageKey, err)
	return err
}

func (c *cache) mismatch(storageKey, field string, want codec.Kind, err error) error {
	c.hooks.TypeMismatch(storageKey, field, want)
	if field == "" {
		return fmt.Errorf("entitycache: %s: %w", storageKey, err)
	}
	return fmt.Errorf("entitycache: %s field %q: %w", storageKey, field, err)
}

// writer sequences the round trips of one write operation. Applied round
// trips are counted for hooks and logs only; callers get the store's error as
// is, with earlier round trips left in place.
type writer struct {
	c    *cache
	ctx  context.Context
	op   string
	done int
}

func (c *cache) writer(ctx context.Context, op string) *writer {
	return &writer{c: c, ctx: ctx, op: op}
}

func (w *writer) do(storageKey string, roundTrip func() error) error {
	if err := roundTrip(); err != nil {
		return w.fail(storageKey, err)
	}
	w.done++
	return nil
}

// replace deletes the sub-hash, then writes m into it.
func (w *writer) replace(sub string, m map[string]float64) error {
	if err := w.do(sub, func() error { return w.c.store.Del(w.ctx, sub) }); err != nil {
		return err
	}
	if len(m) == 0 {
		return nil
	}
	return w.do(sub, func() error { return w.c.store.HSet(w.ctx, sub, codec.EncodeMap(m)) })
}

// finish registers keys in the index (when any) and refreshes the timestamp.
func (w *writer) finish(id uint32, indexed ...string) error {
	c := w.c
	if len(indexed) > 0 {
		idx := keys.Index(c.ns)
		if err := w.do(idx, func() error { return c.store.SAdd(w.ctx, idx, indexed...) }); err != nil {
			return err
		}
	}
	ts := keys.Timestamps(c.ns)
	stamp := c.now().Format(timestampLayout)
	if err := w.do(ts, func() error {
		return c.store.HSet(w.ctx, ts, map[string]string{keys.TimestampField(id): stamp})
	}); err != nil {
		return err
	}
	c.log.Debug("entity written", Fields{"op": w.op, "id": id, "round_trips": w.done})
	return nil
}

func (w *writer) fail(storageKey string, err error) error {
	c := w.c
	c.hooks.RemoteError(w.op, storageKey, err)
	if w.done == 0 {
		return err
	}
	c.hooks.PartialWrite(w.op, storageKey, w.done, err)
	f := opFields(w.op, storageKey)
	f["applied"] = w.done
	f["err"] = err
	c.log.Warn("write partially applied", f)
	return err
}

// checkNames validates (arg, value) pairs: every value must be non-blank.
func checkNames(op string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &ArgumentError{Op: op, Arg: pairs[i], Reason: "empty or blank"}
		}
	}
	return nil
}

func checkMap(op, key string, m map[string]float64) error {
	for field := range m {
		if strings.TrimSpace(field) == "" {
			return &ArgumentError{Op: op, Arg: fmt.Sprintf("map %q entry", key), Reason: "empty or blank field name"}
		}
	}
	return nil
}
