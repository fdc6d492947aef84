package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tenant-deployer/internal/pkg/config"
)

// releaseScript 仅当 value 仍为本次 token 时删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 SET NX PX 的分布式锁，多实例部署时使用
type RedisLocker struct {
	client  *redis.Client
	logger  *zap.Logger
	prefix  string
	timeout time.Duration
}

// NewRedisLocker 连接 Redis 并校验可用
func NewRedisLocker(cfg config.RedisConfig, logger *zap.Logger) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	return &RedisLocker{
		client:  client,
		logger:  logger,
		prefix:  "tenant-deployer:lock:",
		timeout: 500 * time.Millisecond,
	}, nil
}

func (r *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	redisKey := r.prefix + key
	token := uuid.NewString()

	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ok, err := r.client.SetNX(opCtx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("获取锁失败: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求结束后也要释放，不继承请求 ctx
			relCtx, relCancel := context.WithTimeout(context.Background(), r.timeout)
			defer relCancel()
			if err := releaseScript.Run(relCtx, r.client, []string{redisKey}, token).Err(); err != nil {
				r.logger.Warn("释放锁失败", zap.String("key", key), zap.Error(err))
			}
		})
	}, true, nil
}

func (r *RedisLocker) Close() error {
	return r.client.Close()
}
