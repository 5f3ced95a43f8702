// Package subscribe реализует HTTP-обработчик оформления подписки.
// При успехе профиль и токен сохраняются в сессию: пользователь сразу
// аутентифицирован без отдельного входа.
package subscribe

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/subscription"
)

// Request — структура входных данных оформления подписки.
type Request struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Name            string `json:"name"`
	PlanID          string `json:"plan_id" validate:"required"`
}

// Service описывает интерфейс сервиса подписок.
type Service interface {
	Subscribe(ctx context.Context, req subscription.CheckoutRequest) (models.User, string, error)
}

// Sessions описывает запись сессии.
type Sessions interface {
	Save(ctx context.Context, sid string, user models.User, token string) error
}

// Handler обрабатывает HTTP-запросы оформления подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	flights  *flight.Group
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, sessions Sessions, flights *flight.Group) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		flights:  flights,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформление подписки
// @Description Создает подписку на бэкенде и аутентифицирует сессию.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body Request true "Данные оформления"
// @Success 200 {object} map[string]any "Профиль пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Запрос уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Оформление не удалось"
// @Router /subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.subscribe"
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

	sid := middlewarectx.SessionID(r.Context())
	if !h.flights.TryBegin(sid + ":subscribe") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("checkout already in progress"))
		return
	}
	defer h.flights.End(sid + ":subscribe")

	user, token, err := h.service.Subscribe(r.Context(), subscription.CheckoutRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		PlanID:   req.PlanID,
	})
	if err != nil {
		log.Error("subscribe failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	if err := h.sessions.Save(r.Context(), sid, user, token); err != nil {
		log.Error("failed to save session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("subscription created but session could not be saved"))
		return
	}

	log.Info("subscription created",
		slog.String("email", user.Email),
		slog.String("plan", req.PlanID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}
