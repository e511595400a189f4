package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "madchef:recipe:42", Key("recipe", "42"))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1))
	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestNewRedis(t *testing.T) {
	_, err := NewRedis(Config{})
	assert.Error(t, err)

	r, err := NewRedis(Config{Addr: "127.0.0.1:1"})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 5*time.Minute, r.ttl)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	assert.Error(t, r.Ping(ctx))
	assert.NoError(t, r.Delete(ctx))
}
