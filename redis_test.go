package entitycache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/codec"
	"github.com/unkn0wn-root/entitycache/gate"
	redisstore "github.com/unkn0wn-root/entitycache/store/redis"
)

func setupRedisCache(t *testing.T, policy gate.Policy) (*miniredis.RedisDB, entitycache.Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st, err := redisstore.Dial(context.Background(), redisstore.DialConfig{Addr: mr.Addr()})
	require.NoError(t, err)

	c, err := entitycache.New(entitycache.Options{
		Store:      st,
		GatePolicy: policy,
		Now:        func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return mr.DB(redisstore.DefaultDB), c
}

func TestRedisWireLayout(t *testing.T) {
	db, c := setupRedisCache(t, gate.Full)
	ctx := context.Background()

	require.NoError(t, c.SetEntity(ctx, 7, map[string]codec.Value{
		"active": codec.Bool(true),
		"closed": codec.Bool(false),
		"count":  codec.Uint(12),
		"ratio":  codec.Double(0.25),
		"name":   codec.String("truck"),
		"series": codec.Map(map[string]float64{"t0": 1.5, "t1": -2}),
	}))

	assert.Equal(t, ".T.", db.HGet("EntityCache:7", "active"))
	assert.Equal(t, ".F.", db.HGet("EntityCache:7", "closed"))
	assert.Equal(t, "12", db.HGet("EntityCache:7", "count"))
	assert.Equal(t, "0.25", db.HGet("EntityCache:7", "ratio"))
	assert.Equal(t, "truck", db.HGet("EntityCache:7", "name"))
	assert.Equal(t, "1.5", db.HGet("EntityCache:7:series", "t0"))
	assert.Equal(t, "-2", db.HGet("EntityCache:7:series", "t1"))
	assert.Equal(t, "2024-05-01T10:00:00.0000000+00:00", db.HGet("EntityCache-TimeStamps", "7"))

	members, err := db.Members("EntityCache-Keys")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"EntityCache:7", "EntityCache:7:series"}, members)
}

func TestRedisReadsForeignWriter(t *testing.T) {
	db, c := setupRedisCache(t, gate.PerEntity)
	ctx := context.Background()

	// fields as another process sharing the namespace would write them
	db.HSet("EntityCache:9", "speed", "88", "heading", "271.5", "moving", ".T.", "driver", "Ana")
	db.HSet("EntityCache:9:fuel", "t0", "40", "t1", "39.75")
	db.HSet("EntityCache-TimeStamps", "9", "2024-04-30T22:15:01.1234567+02:00")

	e, err := c.GetEntity(ctx, 9)
	require.NoError(t, err)
	assert.True(t, e.Fields["speed"].Equal(codec.Int(88)))
	assert.True(t, e.Fields["heading"].Equal(codec.Double(271.5)))
	assert.True(t, e.Fields["moving"].Equal(codec.Bool(true)))
	assert.True(t, e.Fields["driver"].Equal(codec.String("Ana")))
	assert.True(t, e.Timestamp.Equal(time.Date(2024, 4, 30, 20, 15, 1, 123456700, time.UTC)))

	fuel, err := entitycache.Get[map[string]float64](ctx, c, 9, "fuel")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"t0": 40, "t1": 39.75}, fuel)

	t1, err := c.GetField(ctx, 9, "fuel", "t1")
	require.NoError(t, err)
	assert.Equal(t, 39.75, t1)

	_, err = entitycache.Get[bool](ctx, c, 9, "driver")
	assert.ErrorIs(t, err, entitycache.ErrTypeMismatch)
}

func TestRedisReplaceAndMerge(t *testing.T) {
	db, c := setupRedisCache(t, gate.Full)
	ctx := context.Background()

	require.NoError(t, c.SetMap(ctx, 1, "v", map[string]float64{"a": 1, "b": 2}))
	require.NoError(t, c.SetMap(ctx, 1, "v", map[string]float64{"c": 3}))
	fields, err := db.HKeys("EntityCache:1:v")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, fields)

	require.NoError(t, c.UpdateMap(ctx, 1, "v", map[string]float64{"a": 1}))
	fields, err = db.HKeys("EntityCache:1:v")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, fields)

	require.NoError(t, c.SetSubField(ctx, 1, "v", "c", 4.5))
	assert.Equal(t, "4.5", db.HGet("EntityCache:1:v", "c"))

	ok, err := c.HasField(ctx, 1, "v")
	require.NoError(t, err)
	assert.False(t, ok, "sub-hash names are not primary fields")
}
