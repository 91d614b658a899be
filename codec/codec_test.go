package codec

import (
	"errors"
	"math"
	"testing"
)

func TestScalarRoundTrip(t *testing.T) {
	cases := []Value{
		Bool(true),
		Bool(false),
		Int(0),
		Int(-1),
		Int(math.MaxInt64),
		Int(math.MinInt64),
		Uint(0),
		Uint(math.MaxUint64),
		Double(0),
		Double(-2.5),
		Double(math.MaxFloat64),
		Double(math.SmallestNonzeroFloat64),
		Double(math.NaN()),
		Double(math.Inf(1)),
		Double(math.Inf(-1)),
		String(""),
		String("hello world"),
	}
	for _, v := range cases {
		raw, err := Encode(v)
		if err != nil {
			t.Fatalf("Encode(%v): %v", v, err)
		}
		got, err := Decode(v.Kind(), raw)
		if err != nil {
			t.Fatalf("Decode(%s, %q): %v", v.Kind(), raw, err)
		}
		if !got.Equal(v) {
			t.Fatalf("round trip %v: got %v (raw %q)", v, got, raw)
		}
	}
}

func TestBoolSentinels(t *testing.T) {
	raw, _ := Encode(Bool(true))
	if raw != ".T." {
		t.Fatalf("true encoded as %q", raw)
	}
	raw, _ = Encode(Bool(false))
	if raw != ".F." {
		t.Fatalf("false encoded as %q", raw)
	}

	if got := Recover(".T."); !got.Equal(Bool(true)) {
		t.Fatalf("Recover(.T.) = %v", got)
	}
	if got := Recover(".F."); !got.Equal(Bool(false)) {
		t.Fatalf("Recover(.F.) = %v", got)
	}

	_, err := Decode(KindBool, "true")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Decode(bool, true) err=%v, want ErrTypeMismatch", err)
	}
	var te *TypeError
	if !errors.As(err, &te) || te.Want != KindBool || te.Raw != "true" {
		t.Fatalf("want *TypeError{bool,true}, got %#v", err)
	}
}

func TestRecoverOrder(t *testing.T) {
	cases := []struct {
		raw  string
		want Value
	}{
		{"5", Int(5)},
		{"-42", Int(-42)},
		{"3", Int(3)}, // a whole double reads back as integer
		{"2.5", Double(2.5)},
		{"1e3", Double(1000)},
		{"18446744073709551615", Double(18446744073709551615)},
		{"NaN", Double(math.NaN())},
		{".T.", Bool(true)},
		{".F.", Bool(false)},
		{"true", String("true")},
		{"", String("")},
		{"abc", String("abc")},
	}
	for _, tc := range cases {
		if got := Recover(tc.raw); !got.Equal(tc.want) {
			t.Fatalf("Recover(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestDecodeMismatch(t *testing.T) {
	cases := []struct {
		kind Kind
		raw  string
	}{
		{KindInt, "2.5"},
		{KindInt, "abc"},
		{KindUint, "-1"},
		{KindDouble, "x"},
		{KindBool, "1"},
	}
	for _, tc := range cases {
		if _, err := Decode(tc.kind, tc.raw); !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("Decode(%s, %q) err=%v, want ErrTypeMismatch", tc.kind, tc.raw, err)
		}
	}
}

func TestEncodeRejectsNonScalars(t *testing.T) {
	if _, err := Encode(Value{}); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("invalid value: err=%v", err)
	}
	if _, err := Encode(Map(map[string]float64{"a": 1})); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("map value: err=%v", err)
	}
	if _, err := Decode(KindMap, "1"); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("decode map kind: err=%v", err)
	}
}

func TestMapRoundTrip(t *testing.T) {
	in := map[string]float64{"a": 1, "b": -0.25, "c": 1e300}
	got, err := DecodeMap(EncodeMap(in))
	if err != nil {
		t.Fatal(err)
	}
	if !Map(got).Equal(Map(in)) {
		t.Fatalf("got %v want %v", got, in)
	}

	if _, err := DecodeMap(map[string]string{"a": "1", "b": ".T."}); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("non-numeric sub-hash field: err=%v", err)
	}
}

func TestParseKind(t *testing.T) {
	for k := KindBool; k <= KindMap; k++ {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("invalid"); err == nil {
		t.Fatalf("ParseKind(invalid) should fail")
	}
}
