// Package send реализует HTTP-обработчик отправки отзыва. Пустой email
// заменяется на "anonymous", к отзыву добавляются отметка времени,
// источник и user agent браузера.
package send

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auto-assistant-client/internal/gateway"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
)

// AnonymousEmail подставляется, когда пользователь не указал адрес.
const AnonymousEmail = "anonymous"

// Source метка происхождения отзыва.
const Source = "web_app"

// Request — структура входных данных отзыва.
type Request struct {
	Type    string `json:"type" validate:"omitempty,oneof=comment bug feature question"`
	Message string `json:"message" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// Gateway описывает контракт шлюза к бэкенду.
type Gateway interface {
	Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
}

// Handler обрабатывает HTTP-запросы отправки отзыва.
type Handler struct {
	log      *slog.Logger
	gw       Gateway
	flights  *flight.Group
	now      func() time.Time
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, gw Gateway, flights *flight.Group) *Handler {
	return &Handler{
		log:      log,
		gw:       gw,
		flights:  flights,
		now:      time.Now,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправка отзыва
// @Description Пересылает отзыв бэкенду с отметкой времени и источником.
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body Request true "Отзыв"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.ErrorResponse "Отправка уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /feedback [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feedback.send"
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
	if !h.flights.TryBegin(sid + ":feedback") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("feedback already in progress"))
		return
	}
	defer h.flights.End(sid + ":feedback")

	email := req.Email
	if email == "" {
		email = AnonymousEmail
	}
	feedbackType := req.Type
	if feedbackType == "" {
		feedbackType = "comment"
	}

	body := map[string]string{
		"type":      feedbackType,
		"message":   req.Message,
		"email":     email,
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"source":    Source,
		"userAgent": r.UserAgent(),
	}
	if _, err := h.gw.Call(r.Context(), http.MethodPost, "/feedback", body, nil); err != nil {
		if errors.Is(err, gateway.ErrUnreachable) {
			log.Error("feedback backend unreachable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("Feedback service is unreachable, please try again later"))
			return
		}
		log.Error("feedback send failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not send your feedback"))
		return
	}

	log.Info("feedback sent", slog.String("type", feedbackType))
	render.JSON(w, r, response.OK())
}
