// Package middlewarectx содержит HTTP middleware веб-клиента: привязку
// сессии к запросу, охрану аутентифицированных маршрутов и ограничение
// частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
	"github.com/magabrotheeeer/auto-assistant-client/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SID — ключ идентификатора сессии в контексте
	SID Key = "sid"
	// User — ключ профиля пользователя в контексте (nil для анонима)
	User Key = "user"
)

// SessionID возвращает идентификатор сессии из контекста.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(SID).(string)
	return sid
}

// CurrentUser возвращает профиль пользователя из контекста или nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(User).(*models.User)
	return user
}

// SessionContext привязывает запрос к сессии по cookie. Если cookie нет,
// выпускается новый идентификатор: анонимным представлениям тоже нужно
// локальное состояние. Профиль кладется в контекст, если сессия
// аутентифицирована.
func SessionContext(store *session.Store, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if cookie, err := r.Cookie(cookieName); err == nil {
				sid = cookie.Value
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), SID, sid)
			if state := store.Load(ctx, sid); state.Authenticated {
				ctx = context.WithValue(ctx, User, state.User)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth возвращает middleware, пропускающий только
// аутентифицированные сессии. Анониму отвечает 401.
func RequireAuth(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAuth"
			if CurrentUser(r.Context()) == nil {
				log.Info("anonymous request to protected endpoint",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("path", r.URL.Path))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
