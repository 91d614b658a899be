// Package codec converts cache values to and from the string field values of a
// remote hash store.
//
// Scalars map to one field value each: booleans to the sentinels ".T." and
// ".F.", integers and doubles to their decimal text, strings verbatim. A numeric
// map maps to one hash field per entry. Callers must not store the sentinel
// literals as genuine string data: Recover cannot tell them apart.
package codec

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	TrueSentinel  = ".T."
	FalseSentinel = ".F."
)

var (
	ErrTypeMismatch    = errors.New("codec: type mismatch")
	ErrUnsupportedKind = errors.New("codec: unsupported value kind")
)

// TypeError reports a stored representation that cannot be coerced to the
// requested kind.
type TypeError struct {
	Want Kind
	Raw  string
	Err  error // parse error, if any
}

func (e *TypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: cannot decode %q as %s: %v", e.Raw, e.Want, e.Err)
	}
	return fmt.Sprintf("codec: cannot decode %q as %s", e.Raw, e.Want)
}

func (e *TypeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTypeMismatch, e.Err}
	}
	return []error{ErrTypeMismatch}
}

// Encode returns the field value for a scalar. Maps and invalid values fail
// with ErrUnsupportedKind; use EncodeMap for maps.
func Encode(v Value) (string, error) {
	switch v.kind {
	case KindBool:
		if v.b {
			return TrueSentinel, nil
		}
		return FalseSentinel, nil
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindUint:
		return strconv.FormatUint(v.u, 10), nil
	case KindDouble:
		return formatDouble(v.f), nil
	case KindString:
		return v.s, nil
	default:
		return "", fmt.Errorf("%w: %s is not a scalar", ErrUnsupportedKind, v.kind)
	}
}

// EncodeMap returns one field value per map entry.
func EncodeMap(m map[string]float64) map[string]string {
	out := make(map[string]string, len(m))
	for k, f := range m {
		out[k] = formatDouble(f)
	}
	return out
}

// Decode converts raw to the requested scalar kind.
func Decode(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindBool:
		switch raw {
		case TrueSentinel:
			return Bool(true), nil
		case FalseSentinel:
			return Bool(false), nil
		}
		return Value{}, &TypeError{Want: kind, Raw: raw}
	case KindInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, &TypeError{Want: kind, Raw: raw, Err: err}
		}
		return Int(i), nil
	case KindUint:
		u, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Value{}, &TypeError{Want: kind, Raw: raw, Err: err}
		}
		return Uint(u), nil
	case KindDouble:
		f, err := ParseDouble(raw)
		if err != nil {
			return Value{}, err
		}
		return Double(f), nil
	case KindString:
		return String(raw), nil
	default:
		return Value{}, fmt.Errorf("%w: cannot decode a single field as %s", ErrUnsupportedKind, kind)
	}
}

// ParseDouble decodes one numeric field value.
func ParseDouble(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &TypeError{Want: KindDouble, Raw: raw, Err: err}
	}
	return f, nil
}

// DecodeMap decodes every entry of a sub-hash as a double.
func DecodeMap(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for k, s := range raw {
		f, err := ParseDouble(s)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}

// Recover reconstructs a value whose kind is unknown. Attempts run in a fixed
// order shared with every other writer of the store: integer, then double, then
// boolean sentinel, falling back to the raw string.
//
// The recovery is lossy: the text "5" comes back as Int(5), a whole double
// 3.0 (stored as "3") as Int(3), and an unsigned value above MaxInt64 as a
// Double.
func Recover(raw string) Value {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Double(f)
	}
	switch raw {
	case TrueSentinel:
		return Bool(true)
	case FalseSentinel:
		return Bool(false)
	}
	return String(raw)
}

// RecoverAll applies Recover to every field of a hash.
func RecoverAll(raw map[string]string) map[string]Value {
	out := make(map[string]Value, len(raw))
	for k, s := range raw {
		out[k] = Recover(s)
	}
	return out
}

// formatDouble uses the shortest representation that parses back to f,
// matching what the Redis client sends for float64 arguments.
func formatDouble(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
