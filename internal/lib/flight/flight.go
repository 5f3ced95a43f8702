// Package flight ограничивает число одновременных запросов от одного
// представления: в пределах пары (сессия, представление) допустим ровно
// один запрос в полете, повторная отправка отклоняется.
package flight

import "sync"

// Group хранит множество ключей с активными запросами.
type Group struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewGroup создает пустую группу.
func NewGroup() *Group {
	return &Group{busy: make(map[string]bool)}
}

// TryBegin помечает ключ занятым. Возвращает false, если по ключу
// уже есть запрос в полете.
func (g *Group) TryBegin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[key] {
		return false
	}
	g.busy[key] = true
	return true
}

// End снимает пометку занятости с ключа.
func (g *Group) End(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, key)
}
