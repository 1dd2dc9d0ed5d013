package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redisdb "github.com/your-org/fashion-store/internal/infrastructure/database/redis"
)

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	fresh, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", fresh.ID)
	assert.True(t, fresh.Cart.IsEmpty())
	assert.Nil(t, fresh.BuyNow)

	userID := uint(42)
	fresh.UserID = &userID
	fresh.DarkMode = true
	require.NoError(t, fresh.Cart.Add(Line{VariantID: 3, UnitPrice: decimal.RequireFromString("19.99"), Quantity: 2}, 5))
	fresh.BuyNow = &Cart{Lines: []Line{{VariantID: 4, UnitPrice: decimal.NewFromInt(5), Quantity: 1}}}
	require.NoError(t, store.Save(ctx, fresh))

	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, loaded.UserID)
	assert.Equal(t, userID, *loaded.UserID)
	assert.True(t, loaded.DarkMode)
	assert.Equal(t, "39.98", loaded.Cart.Total().StringFixed(2))
	require.NotNil(t, loaded.BuyNow)
	assert.Equal(t, uint(4), loaded.BuyNow.Lines[0].VariantID)

	require.NoError(t, store.Delete(ctx, "abc"))
	gone, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, gone.Cart.IsEmpty())
}

func TestRedisSessionStoreRequiresID(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	store := NewRedisSessionStore(client, time.Hour)

	_, err := store.Load(context.Background(), "")
	assert.Error(t, err)
}
