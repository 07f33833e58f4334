package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connection is the shared state of one realtime client.
type Connection struct {
	ClientID    string    `json:"clientId"`
	Username    string    `json:"username,omitempty"`
	RemoteAddr  string    `json:"remoteAddr,omitempty"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// ConnectionStore persists realtime connection state so any replica can answer for it.
type ConnectionStore interface {
	Save(ctx context.Context, conn Connection) error
	Get(ctx context.Context, clientID string) (*Connection, error)
	Delete(ctx context.Context, clientID string) error
}

// RedisConnectionStore keeps connections under "connections:<clientId>" with a fixed TTL.
type RedisConnectionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisConnectionStore creates a Redis-backed connection store.
func NewRedisConnectionStore(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *RedisConnectionStore {
	return &RedisConnectionStore{client: client, ttl: ttl, log: log}
}

// Save writes the connection and resets its TTL.
func (s *RedisConnectionStore) Save(ctx context.Context, conn Connection) error {
	if conn.ClientID == "" {
		return fmt.Errorf("connection requires a client id")
	}

	data, err := json.Marshal(conn)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, GenerateKey(conn.ClientID, ConnectionPattern), data, s.ttl).Err(); err != nil {
		s.log.Error("failed to store connection", zap.String("client_id", conn.ClientID), zap.Error(err))
		return err
	}
	return nil
}

// Get returns the stored connection, or nil when it is unknown or expired.
func (s *RedisConnectionStore) Get(ctx context.Context, clientID string) (*Connection, error) {
	data, err := s.client.Get(ctx, GenerateKey(clientID, ConnectionPattern)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("failed to read connection", zap.String("client_id", clientID), zap.Error(err))
		return nil, err
	}

	var conn Connection
	if err := json.Unmarshal(data, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// Delete forgets a connection.
func (s *RedisConnectionStore) Delete(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, GenerateKey(clientID, ConnectionPattern)).Err(); err != nil {
		s.log.Error("failed to delete connection", zap.String("client_id", clientID), zap.Error(err))
		return err
	}
	return nil
}
