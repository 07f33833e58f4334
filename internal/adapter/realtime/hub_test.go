package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-pref-service/internal/adapter/cache"
	"user-pref-service/internal/auth"
	"user-pref-service/internal/domain/event"
)

type testEnv struct {
	hub    *Hub
	store  *cache.RedisConnectionStore
	server *httptest.Server
}

func setup(t *testing.T, cfg Config) *testEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	store := cache.NewRedisConnectionStore(client, 24*time.Hour, log)
	hub := NewHub(store, cfg, log)

	// identity comes from the query so one server can host several users
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := &auth.Identity{Username: r.URL.Query().Get("user"), ClientID: r.URL.Query().Get("client")}
		if err := hub.Serve(w, r, identity); err != nil {
			t.Logf("upgrade failed: %v", err)
		}
	}))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})

	return &testEnv{hub: hub, store: store, server: server}
}

func (e *testEnv) dial(t *testing.T, user, client string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/?user=" + user + "&client=" + client
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHub_NotifyTargetsUsernameOrClient(t *testing.T) {
	env := setup(t, Config{})
	john := env.dial(t, "john@example.com", "c-john")
	jane := env.dial(t, "jane@example.com", "c-jane")
	require.Eventually(t, func() bool { return env.hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	n := env.hub.Notify(context.Background(), "john@example.com", "", event.UserUpdated, map[string]any{"id": "u1"})
	assert.Equal(t, 1, n)
	f := readFrame(t, john)
	assert.Equal(t, event.UserUpdated, f.Event)
	assert.Equal(t, "u1", f.Data["id"])

	n = env.hub.Notify(context.Background(), "", "c-jane", event.PreferenceUpdated, nil)
	assert.Equal(t, 1, n)
	assert.Equal(t, event.PreferenceUpdated, readFrame(t, jane).Event)

	n = env.hub.Broadcast(context.Background(), event.Broadcast, map[string]any{"msg": "hi"})
	assert.Equal(t, 2, n)
	assert.Equal(t, event.Broadcast, readFrame(t, john).Event)
	assert.Equal(t, event.Broadcast, readFrame(t, jane).Event)
}

func TestHub_ConnectionStateLifecycle(t *testing.T) {
	env := setup(t, Config{})
	ctx := context.Background()

	conn := env.dial(t, "john@example.com", "c-1")
	require.Eventually(t, func() bool {
		c, err := env.store.Get(ctx, "c-1")
		return err == nil && c != nil
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := env.store.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", stored.Username)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool {
		c, err := env.store.Get(ctx, "c-1")
		return err == nil && c == nil && env.hub.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_GeneratesClientIDWhenMissing(t *testing.T) {
	env := setup(t, Config{})
	env.dial(t, "john@example.com", "")
	require.Eventually(t, func() bool { return env.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	env.hub.mu.RLock()
	defer env.hub.mu.RUnlock()
	for c := range env.hub.clients {
		assert.NotEmpty(t, c.clientID)
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	env := setup(t, Config{AllowedOrigins: []string{"https://app.example.com"}})
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/?user=john@example.com"

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, env.hub.Count())
}

func TestHub_NoMatchDeliversNothing(t *testing.T) {
	hub := NewHub(nil, Config{}, zaptest.NewLogger(t))

	assert.Equal(t, 0, hub.Notify(context.Background(), "nobody@example.com", "", event.UserDeleted, nil))
	assert.Equal(t, 0, hub.Broadcast(context.Background(), event.Broadcast, nil))
}
