package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory хранит значения в памяти процесса. Используется, когда redis
// не сконфигурирован, и в тестах.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

// NewMemory создает пустое in-memory хранилище.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryEntry)}
}

// Get возвращает значение по ключу и признак его наличия.
// Просроченные записи считаются отсутствующими.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set сохраняет значение по ключу с временем жизни.
// Нулевое время жизни означает отсутствие срока.
func (m *Memory) Set(_ context.Context, key, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}
	m.items[key] = entry
	return nil
}

// Del удаляет значения по ключам.
func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}
