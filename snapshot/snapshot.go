// Package snapshot is a portable, lossless form of one cached entity.
//
// Every scalar travels as its kind plus its encoded field value, and every
// sub-hash as its encoded field values, so importing a snapshot writes back
// exactly what was exported regardless of the serialization format.
package snapshot

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/codec"
)

var ErrInvalidSnapshot = errors.New("snapshot: invalid snapshot")

// Field is one primary-hash field (Kind is a scalar kind and Raw its encoded
// value) or one sub-hash (Kind is "map" and Map holds its encoded entries).
type Field struct {
	Kind string            `json:"kind" msgpack:"kind" cbor:"kind"`
	Raw  string            `json:"raw,omitempty" msgpack:"raw,omitempty" cbor:"raw,omitempty"`
	Map  map[string]string `json:"map,omitempty" msgpack:"map,omitempty" cbor:"map,omitempty"`
}

type Snapshot struct {
	ID        uint32           `json:"id" msgpack:"id" cbor:"id"`
	Timestamp time.Time        `json:"timestamp" msgpack:"timestamp" cbor:"timestamp"`
	Fields    map[string]Field `json:"fields" msgpack:"fields" cbor:"fields"`
}

// FromEntity builds a snapshot of e plus the sub-hashes in subs, keyed by
// sub-key. A sub-key that collides with a primary field name is rejected.
func FromEntity(e entitycache.Entity, subs map[string]map[string]float64) (Snapshot, error) {
	s := Snapshot{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Fields:    make(map[string]Field, len(e.Fields)+len(subs)),
	}
	for name, v := range e.Fields {
		raw, err := codec.Encode(v)
		if err != nil {
			return Snapshot{}, fmt.Errorf("snapshot: field %q: %w", name, err)
		}
		s.Fields[name] = Field{Kind: v.Kind().String(), Raw: raw}
	}
	for name, m := range subs {
		if _, dup := s.Fields[name]; dup {
			return Snapshot{}, fmt.Errorf("%w: %q is both a field and a sub-hash", ErrInvalidSnapshot, name)
		}
		s.Fields[name] = Field{Kind: codec.KindMap.String(), Map: codec.EncodeMap(m)}
	}
	return s, nil
}

// ToFields decodes the snapshot into the field set accepted by
// Cache.SetEntity.
func ToFields(s Snapshot) (map[string]codec.Value, error) {
	out := make(map[string]codec.Value, len(s.Fields))
	for _, name := range s.Names() {
		f := s.Fields[name]
		kind, err := codec.ParseKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidSnapshot, name, err)
		}
		if kind == codec.KindMap {
			m, err := codec.DecodeMap(f.Map)
			if err != nil {
				return nil, fmt.Errorf("%w: sub-hash %q: %v", ErrInvalidSnapshot, name, err)
			}
			out[name] = codec.Map(m)
			continue
		}
		v, err := codec.Decode(kind, f.Raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidSnapshot, name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Names returns the field names in sorted order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
