// Package logout реализует HTTP-обработчик выхода: сессия очищается,
// ресурсы представлений освобождаются наблюдателями хранилища сессии.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
)

// Sessions описывает очистку сессии.
type Sessions interface {
	Clear(ctx context.Context, sid string) error
}

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
}

// New создает новый Handler.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	if err := h.sessions.Clear(r.Context(), sid); err != nil {
		log.Error("failed to clear session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign out"))
		return
	}

	log.Info("logout success")
	render.JSON(w, r, response.OK())
}
