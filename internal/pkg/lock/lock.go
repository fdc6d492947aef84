package lock

import (
	"context"
	"time"
)

// Unlock 释放锁，重复调用安全
type Unlock func()

// Locker 租户级互斥锁；ok=false 表示锁已被占用
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock Unlock, ok bool, err error)
	Close() error
}
