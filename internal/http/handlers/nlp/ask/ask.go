// Package ask реализует HTTP-обработчик команды ассистенту. Реплика
// добавляется в диалог сессии до отправки бэкенду; ответ возвращается
// вместе с обновленным диалогом.
package ask

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
)

// Request — структура входных данных команды.
type Request struct {
	Command string `json:"command" validate:"required"`
}

// Service описывает интерфейс сервиса ассистента.
type Service interface {
	Ask(ctx context.Context, sid, command string) ([]models.ConversationTurn, error)
	Transcript(sid string) []models.ConversationTurn
}

// Handler обрабатывает HTTP-запросы к ассистенту.
type Handler struct {
	log      *slog.Logger
	service  Service
	flights  *flight.Group
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, flights *flight.Group) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		flights:  flights,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Команда ассистенту
// @Description Отправляет текстовую команду и возвращает обновленный диалог.
// @Tags NLP
// @Accept json
// @Produce json
// @Param request body Request true "Текст команды"
// @Success 200 {object} map[string]any "Диалог с ответом ассистента"
// @Failure 409 {object} response.ErrorResponse "Запрос уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Пустая команда"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /nlp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.nlp.ask"
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
	if !h.flights.TryBegin(sid + ":nlp") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("command already in progress"))
		return
	}
	defer h.flights.End(sid + ":nlp")

	transcript, err := h.service.Ask(r.Context(), sid, req.Command)
	if err != nil {
		log.Error("assistant request failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "An error occurred while processing your command. Please try again.",
			Data:   map[string]any{"transcript": transcript},
		})
		return
	}

	log.Info("assistant replied")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"transcript": transcript,
	}))
}
