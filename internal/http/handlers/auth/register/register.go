// Package register реализует HTTP-обработчик регистрации.
//
// Регистрация локальная: проверяются обязательные поля, длина пароля и
// совпадение подтверждения; сетевой вызов не выполняется, сессия не
// создается. Успех переводит пользователя на форму входа.
package register

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
)

// Request — структура входных данных для регистрации.
//
// Пароль — минимум 6 символов, подтверждение должно совпадать.
type Request struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Локальная валидация формы регистрации без сетевого вызова.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные регистрации"
// @Success 200 {object} map[string]any "Регистрация принята"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
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

	log.Info("registration accepted", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Registration successful. You can now sign in.",
		"email":   req.Email,
	}))
}
