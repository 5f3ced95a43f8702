// Package session реализует хранилище пользовательской сессии.
//
// Сессия состоит из двух записей key/value хранилища: JWT-токена
// и JSON-профиля пользователя. Сессия аутентифицирована, только если
// хранимый токен проходит проверку подписи и срока действия.
// Поврежденный JSON профиля, как и невалидный токен, трактуется как
// анонимная сессия и никогда не приводит к ошибке у вызывающего.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/jwt"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// KV описывает контракт key/value хранилища сессий.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// TokenParser проверяет хранимый токен сессии.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// State состояние сессии: либо анонимная, либо аутентифицированная
// с токеном и профилем.
type State struct {
	Authenticated bool
	Token         string
	User          *models.User
}

// Store владеет записью и чтением сессии. Единственный компонент,
// которому разрешено писать в хранилище сессий.
type Store struct {
	kv     KV
	parser TokenParser
	ttl    time.Duration
	log    *slog.Logger

	mu       sync.Mutex
	watchers []func(sid string)
}

// New создает Store поверх переданного key/value хранилища.
func New(kv KV, parser TokenParser, ttl time.Duration, log *slog.Logger) *Store {
	return &Store{kv: kv, parser: parser, ttl: ttl, log: log}
}

func tokenKey(sid string) string { return "session:" + sid + ":token" }
func userKey(sid string) string  { return "session:" + sid + ":user" }

// Load читает токен и профиль из хранилища. Любая проблема — отсутствие
// записей, ошибка хранилища, невалидный или просроченный токен,
// поврежденный JSON — дает анонимное состояние.
func (s *Store) Load(ctx context.Context, sid string) State {
	const op = "session.Load"
	if sid == "" {
		return State{}
	}
	token, ok, err := s.kv.Get(ctx, tokenKey(sid))
	if err != nil || !ok || token == "" {
		if err != nil {
			s.log.Warn("session token read failed", slog.String("op", op), sl.Err(err))
		}
		return State{}
	}
	if _, err := s.parser.ParseToken(token); err != nil {
		s.log.Warn("stored session token is invalid, treating session as anonymous",
			slog.String("op", op), sl.Err(err))
		return State{}
	}
	raw, ok, err := s.kv.Get(ctx, userKey(sid))
	if err != nil || !ok {
		return State{}
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn("stored user record is malformed, treating session as anonymous",
			slog.String("op", op), sl.Err(err))
		return State{}
	}
	return State{Authenticated: true, Token: token, User: &user}
}

// Save записывает токен и профиль как одну логическую операцию.
// Прежнее содержимое сессии полностью замещается.
func (s *Store) Save(ctx context.Context, sid string, user models.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, tokenKey(sid), token, s.ttl); err != nil {
		return err
	}
	return s.kv.Set(ctx, userKey(sid), string(raw), s.ttl)
}

// Clear удаляет обе записи сессии и уведомляет подписчиков,
// чтобы они освободили ресурсы, привязанные к сессии.
func (s *Store) Clear(ctx context.Context, sid string) error {
	err := s.kv.Del(ctx, tokenKey(sid), userKey(sid))

	s.mu.Lock()
	watchers := make([]func(string), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(sid)
	}
	return err
}

// OnClear регистрирует наблюдателя, вызываемого после очистки сессии.
func (s *Store) OnClear(fn func(sid string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}
