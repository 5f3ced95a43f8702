// Package mounts отслеживает активное представление каждой сессии.
//
// У сессии в любой момент смонтировано не более одного представления.
// При навигации на новую страницу ресурсы предыдущего представления
// (таймер опроса телеметрии, транскрипт диалога, состояние ECU)
// освобождаются зарегистрированной функцией teardown. Состояние
// представления не переживает навигацию.
package mounts

import (
	"log/slog"
	"sync"
)

// Registry реестр смонтированных представлений.
type Registry struct {
	log *slog.Logger

	mu        sync.Mutex
	active    map[string]string
	teardowns map[string]func(sid string)
}

// NewRegistry создает пустой реестр.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:       log,
		active:    make(map[string]string),
		teardowns: make(map[string]func(string)),
	}
}

// Register связывает имя представления с функцией освобождения его ресурсов.
func (r *Registry) Register(view string, teardown func(sid string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardowns[view] = teardown
}

// Mount отмечает представление активным для сессии. Если до этого было
// смонтировано другое представление, его ресурсы освобождаются.
func (r *Registry) Mount(sid, view string) {
	if sid == "" {
		return
	}
	r.mu.Lock()
	prev, ok := r.active[sid]
	var teardown func(string)
	if ok && prev != view {
		teardown = r.teardowns[prev]
	}
	r.active[sid] = view
	r.mu.Unlock()

	if teardown != nil {
		r.log.Debug("unmounting previous view", slog.String("view", prev), slog.String("sid", sid))
		teardown(sid)
	}
}

// Release освобождает ресурсы всех представлений сессии.
// Вызывается при очистке сессии (logout, истечение).
func (r *Registry) Release(sid string) {
	r.mu.Lock()
	delete(r.active, sid)
	teardowns := make([]func(string), 0, len(r.teardowns))
	for _, fn := range r.teardowns {
		teardowns = append(teardowns, fn)
	}
	r.mu.Unlock()

	for _, fn := range teardowns {
		fn(sid)
	}
}

// Active возвращает имя активного представления сессии.
func (r *Registry) Active(sid string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[sid]
}
