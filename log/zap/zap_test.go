package zap

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/entitycache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("d", nil)
	l.Info("i", entitycache.Fields{"id": uint32(7)})
	l.Warn("w", entitycache.Fields{"op": "SetMap", "key": "EntityCache:7:v", "applied": 1})
	l.Error("e", entitycache.Fields{"err": errors.New("boom")})

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("entries = %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d level = %v", i, e.Level)
		}
	}

	w := entries[2].Context
	if len(w) != 3 || w[0].Key != "applied" || w[1].Key != "key" || w[2].Key != "op" {
		t.Fatalf("warn fields = %v", w)
	}
	if got := entries[3].ContextMap()["err"]; got != "boom" {
		t.Fatalf("err field = %v", got)
	}
}
