package codec

import (
	"fmt"
	"math"
)

// Kind enumerates the value kinds a cache field can hold.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindDouble
	KindString
	KindMap // named numeric sub-hash
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindUint:    "uint",
	KindDouble:  "double",
	KindString:  "string",
	KindMap:     "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if k != int(KindInvalid) && name == s {
			return Kind(k), nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// Value is a closed tagged variant over the kinds the cache can store.
// The zero Value has KindInvalid and is rejected by Encode.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	m    map[string]float64
}

func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func Int(v int64) Value      { return Value{kind: KindInt, i: v} }
func Uint(v uint64) Value    { return Value{kind: KindUint, u: v} }
func Double(v float64) Value { return Value{kind: KindDouble, f: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }

// Map wraps a numeric sub-map. The map is not copied.
func Map(m map[string]float64) Value { return Value{kind: KindMap, m: m} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool)              { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)              { return v.i, v.kind == KindInt }
func (v Value) AsUint() (uint64, bool)            { return v.u, v.kind == KindUint }
func (v Value) AsDouble() (float64, bool)         { return v.f, v.kind == KindDouble }
func (v Value) AsString() (string, bool)          { return v.s, v.kind == KindString }
func (v Value) AsMap() (map[string]float64, bool) { return v.m, v.kind == KindMap }

// Any returns the held Go value (bool, int64, uint64, float64, string or
// map[string]float64), or nil for an invalid Value.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindMap:
		return v.m
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same kind and value.
// Two NaN doubles compare equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindUint:
		return v.u == o.u
	case KindDouble:
		return floatEqual(v.f, o.f)
	case KindString:
		return v.s == o.s
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, a := range v.m {
			b, ok := o.m[k]
			if !ok || !floatEqual(a, b) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String() string {
	if v.kind == KindInvalid {
		return "<invalid>"
	}
	return fmt.Sprintf("%s(%v)", v.kind, v.Any())
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
