package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker 单进程锁，未启用 Redis 时使用
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (m *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, held := m.locks[key]; held && now.Before(e.expiresAt) {
		return nil, false, nil
	}

	token := uuid.NewString()
	m.locks[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// 过期后被他人重新获取的锁不能释放
			if e, ok := m.locks[key]; ok && e.token == token {
				delete(m.locks, key)
			}
		})
	}, true, nil
}

func (m *MemoryLocker) Close() error {
	return nil
}
