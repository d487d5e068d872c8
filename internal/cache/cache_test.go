package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/buyareco-backend/internal/config"
)

func TestNewWithoutAddr(t *testing.T) {
	c := New(context.Background(), config.RedisConfig{}, log.New(io.Discard))
	assert.IsType(t, Noop{}, c)
}

func TestNewUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	c := New(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}, log.New(io.Discard))
	assert.IsType(t, Noop{}, c)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Set(context.Background(), "k", []string{"v"}))

	var out []string
	found, err := c.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)
	assert.NoError(t, c.Close())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "buyareco:recs:cozy,calm:", Key("recs", "cozy,calm", ""))
}
