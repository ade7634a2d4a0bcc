package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/domain"
)

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	var miss []domain.Hotel
	ok, err := c.Get(ctx, "listing:x", &miss)
	require.NoError(t, err)
	assert.False(t, ok)

	in := []domain.Hotel{{ID: "1", Title: "Hotel A", Room: "single", Price: domain.Price{Amount: 99.5}}}
	require.NoError(t, c.Set(ctx, "listing:x", in, 60))
	assert.True(t, mr.Exists("hb:listing:x"))

	var out []domain.Hotel
	ok, err = c.Get(ctx, "listing:x", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)

	require.NoError(t, c.Del(ctx, "listing:x"))
	ok, err = c.Get(ctx, "listing:x", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)

	require.NoError(t, c.Set(context.Background(), "k", "v", 30))
	assert.Equal(t, 30.0, mr.TTL("hb:k").Seconds())
}
