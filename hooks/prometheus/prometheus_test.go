package promhooks

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unkn0wn-root/entitycache/codec"
)

func TestCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg, "test")

	h.RemoteError("GetMap", "EntityCache:1:v", errors.New("x"))
	h.RemoteError("GetMap", "EntityCache:2:v", errors.New("x"))
	h.PartialWrite("SetEntity", "EntityCache-Keys", 3, errors.New("x"))
	h.TypeMismatch("EntityCache:1", "flag", codec.KindBool)
	h.GateWait("SetInt", 2*time.Millisecond)
	h.GateWait("SetInt", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(h.remoteErrors.WithLabelValues("GetMap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.partialWrites.WithLabelValues("SetEntity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.typeMismatches.WithLabelValues("bool")))

	n, err := testutil.GatherAndCount(reg, "test_entitycache_gate_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "dup")
	assert.Panics(t, func() { New(reg, "dup") })
}
