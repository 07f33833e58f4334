package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-pref-service/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func testUser(id string) *domain.User {
	return &domain.User{
		ID:       id,
		FullName: "John Doe",
		Email:    id + "@example.com",
		Preference: &domain.Preference{
			ID:           "pref-" + id,
			UserID:       id,
			DefaultTheme: domain.ThemeDark,
		},
	}
}

func TestRedisUserCache_Set_Success(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	user := testUser("u1")
	require.NoError(t, cache.Set(context.Background(), user))

	data, err := client.Get(context.Background(), "users:u1").Bytes()
	require.NoError(t, err)

	var cached domain.User
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, user.Email, cached.Email)
	require.NotNil(t, cached.Preference)
	assert.Equal(t, domain.ThemeDark, cached.Preference.DefaultTheme)
}

func TestRedisUserCache_Set_NilUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	err := cache.Set(context.Background(), nil)
	assert.ErrorContains(t, err, "cannot cache nil user")
}

func TestRedisUserCache_Get(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), testUser("u1")))

	cached, err := cache.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "u1@example.com", cached.Email)

	missing, err := cache.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRedisUserCache_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, cache.Set(context.Background(), testUser(id)))
	}

	require.NoError(t, cache.Delete(context.Background(), "u1", "u2", "u3"))
	require.NoError(t, cache.Delete(context.Background()))

	for _, id := range []string{"u1", "u2", "u3"} {
		cached, err := cache.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, cached)
	}
}

func TestRedisUserCache_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 2*time.Second, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), testUser("u1")))

	mr.FastForward(3 * time.Second)

	cached, err := cache.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisConnectionStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisConnectionStore(client, 24*time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	conn := Connection{ClientID: "c-1", Username: "john@example.com", ConnectedAt: time.Unix(1700000000, 0).UTC()}
	require.NoError(t, store.Save(ctx, conn))
	assert.Equal(t, 24*time.Hour, mr.TTL("connections:c-1"))

	got, err := store.Get(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conn, *got)

	require.NoError(t, store.Delete(ctx, "c-1"))
	got, err = store.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, store.Save(ctx, Connection{}))
}

func TestRedisConnectionStore_Expires(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisConnectionStore(client, 24*time.Hour, zaptest.NewLogger(t))

	require.NoError(t, store.Save(context.Background(), Connection{ClientID: "c-2"}))
	mr.FastForward(25 * time.Hour)

	got, err := store.Get(context.Background(), "c-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}
