package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raywall/healthdata-loader/pkg/config"
	"github.com/redis/go-redis/v9"
)

const KeyPrefix = "healthdata:refresh:"

// RedisClient é o subconjunto de comandos usado pelo RedisStore (permite Mock).
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisStore compartilha os instantes de refresh entre execuções e réplicas.
// A chave expira junto com o TTL da fonte.
type RedisStore struct {
	client RedisClient
	ttls   TTLSource
}

func NewRedisStore(client RedisClient, ttls TTLSource) *RedisStore {
	return &RedisStore{client: client, ttls: ttls}
}

// NewRedisClient cria o cliente real a partir da configuração.
func NewRedisClient(cfg config.RedisConf) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func key(sourceID string) string {
	return KeyPrefix + strings.ToLower(sourceID)
}

func (r *RedisStore) LastRefresh(ctx context.Context, sourceID string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, key(sourceID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("erro ao ler refresh do redis: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("valor de refresh inválido '%s': %w", val, err)
	}
	return t, true, nil
}

func (r *RedisStore) MarkRefreshed(ctx context.Context, sourceID string, at time.Time) error {
	var expiration time.Duration
	if ttl, ok := r.ttls.TTL(sourceID); ok {
		expiration = ttl
	}
	if err := r.client.Set(ctx, key(sourceID), at.UTC().Format(time.RFC3339Nano), expiration).Err(); err != nil {
		return fmt.Errorf("erro ao gravar refresh no redis: %w", err)
	}
	return nil
}

// Ping verifica a disponibilidade do redis.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
