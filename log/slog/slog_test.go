package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/entitycache"
)

func TestLoggerWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))}

	l.Warn("write partially applied", entitycache.Fields{"op": "SetEntity", "applied": 2})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["level"] != "WARN" || rec["msg"] != "write partially applied" {
		t.Fatalf("record = %v", rec)
	}
	if rec["op"] != "SetEntity" || rec["applied"] != float64(2) {
		t.Fatalf("attrs = %v", rec)
	}
}
