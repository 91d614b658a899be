package keys

import "testing"

func TestLayout(t *testing.T) {
	if got := Primary("EntityCache", 7); got != "EntityCache:7" {
		t.Fatalf("Primary = %q", got)
	}
	if got := Sub("EntityCache", 7, "series"); got != "EntityCache:7:series" {
		t.Fatalf("Sub = %q", got)
	}
	if got := Index("EntityCache"); got != "EntityCache-Keys" {
		t.Fatalf("Index = %q", got)
	}
	if got := Timestamps("EntityCache"); got != "EntityCache-TimeStamps" {
		t.Fatalf("Timestamps = %q", got)
	}
	if got := TimestampField(4294967295); got != "4294967295" {
		t.Fatalf("TimestampField = %q", got)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		key  string
		id   uint32
		sub  string
		okay bool
	}{
		{"ns:7", 7, "", true},
		{"ns:7:series", 7, "series", true},
		{"ns:7:a:b", 7, "a:b", true},
		{"other:7", 0, "", false},
		{"ns:x", 0, "", false},
		{"ns:4294967296", 0, "", false},
	}
	for _, tc := range cases {
		id, sub, ok := Parse("ns", tc.key)
		if ok != tc.okay || id != tc.id || sub != tc.sub {
			t.Fatalf("Parse(%q) = %d,%q,%v", tc.key, id, sub, ok)
		}
	}
}
