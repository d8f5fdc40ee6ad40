package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newRedisStore(t)

	require.NoError(t, s.Set("abc", []byte(`{"nav":1}`), 0))

	value, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"nav":1}`), value)
	assert.True(t, mr.Exists(DefaultRedisPrefix+"abc"))

	require.NoError(t, s.Delete("abc"))
	value, err = s.Get("abc")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRedisStoreMissingKey(t *testing.T) {
	s, _ := newRedisStore(t)

	value, err := s.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = s.Get("")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newRedisStore(t)

	require.NoError(t, s.Set("abc", []byte("x"), time.Minute))
	mr.FastForward(2 * time.Minute)

	value, err := s.Get("abc")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRedisStoreIgnoresEmpty(t *testing.T) {
	s, mr := newRedisStore(t)

	require.NoError(t, s.Set("", []byte("x"), 0))
	require.NoError(t, s.Set("abc", nil, 0))

	assert.Empty(t, mr.Keys())
}

func TestRedisStoreResetKeepsOtherKeys(t *testing.T) {
	s, mr := newRedisStore(t)

	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Set("b", []byte("2"), 0))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, s.Reset())

	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisConfig{Address: addr})
	assert.ErrorContains(t, err, "redis ping failed")
}
