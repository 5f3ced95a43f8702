// Package login реализует HTTP-обработчик входа пользователя.
//
// Учетные данные проверяются локально (демо-учетка); при успехе профиль
// и токен сохраняются в хранилище сессии, прежнее содержимое сессии
// полностью замещается.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
	authservice "github.com/magabrotheeeer/auto-assistant-client/internal/services/auth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс локальной аутентификации.
type Service interface {
	Login(email, rawPassword string) (models.User, string, error)
}

// Sessions описывает запись сессии.
type Sessions interface {
	Save(ctx context.Context, sid string, user models.User, token string) error
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, sessions Sessions) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Локальная проверка демо-учетки, создание сессии.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} map[string]any "Профиль пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			log.Info("login rejected", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("incorrect email or password"))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign in"))
		return
	}

	sid := middlewarectx.SessionID(r.Context())
	if err := h.sessions.Save(r.Context(), sid, user, token); err != nil {
		log.Error("failed to save session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign in"))
		return
	}

	log.Info("login success", slog.String("email", user.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}
