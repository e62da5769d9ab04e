package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStore 进程内会话存储，未配置 Redis 时使用，也用于测试。
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Create(_ context.Context, username string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := Session{ID: uuid.NewString(), Username: username, CreatedAt: now}
	m.entries[s.ID] = memoryEntry{sess: s, expiresAt: now.Add(m.ttl)}
	m.gcLocked(now)
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, id)
		return Session{}, ErrNotFound
	}
	return e.sess, nil
}

func (m *MemoryStore) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[id]
	if !ok || !now.Before(e.expiresAt) {
		delete(m.entries, id)
		return ErrNotFound
	}
	e.expiresAt = now.Add(m.ttl)
	m.entries[id] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// gcLocked 顺带清理过期会话，调用方需持有锁。
func (m *MemoryStore) gcLocked(now time.Time) {
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}
