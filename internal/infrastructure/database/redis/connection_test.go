package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()})), mr
}

func TestJSONRoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, client.SetJSON(ctx, "k", payload{Name: "shirt", Count: 2}, time.Minute))

	var got payload
	require.NoError(t, client.GetJSON(ctx, "k", &got))
	assert.Equal(t, payload{Name: "shirt", Count: 2}, got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	err := client.GetJSON(ctx, "missing", &got)
	assert.True(t, errors.Is(err, Nil))
}

func TestIncrWindow(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := client.IncrWindow(ctx, "rl", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, time.Minute, mr.TTL("rl"))

	mr.FastForward(time.Minute + time.Second)

	n, err := client.IncrWindow(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestHealth(t *testing.T) {
	client, mr := newTestClient(t)
	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}
