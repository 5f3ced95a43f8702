// Package setparam реализует HTTP-обработчик правки параметра тюнинга.
// Значение вне допустимого диапазона молча отклоняется: в ответе
// возвращается действующее значение и признак применения правки.
package setparam

import (
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
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/ecuflash"
)

// Request — структура входных данных правки параметра.
// Значение передается указателем: ноль — допустимое значение.
type Request struct {
	Name  string   `json:"name" validate:"required"`
	Value *float64 `json:"value" validate:"required"`
}

// Service описывает интерфейс сервиса ECU Flash.
type Service interface {
	SetParam(sid, name string, value float64) (float64, bool, error)
}

// Handler обрабатывает HTTP-запросы правки параметра.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Правка параметра тюнинга
// @Description Применяет значение параметра, отклоняя значения вне диапазона.
// @Tags ECUFlash
// @Accept json
// @Produce json
// @Param request body Request true "Имя и значение параметра"
// @Success 200 {object} map[string]any "Действующее значение"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Неизвестный параметр"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /ecu-flash/parameter [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ecuflash.setparam"
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
	value, applied, err := h.service.SetParam(sid, req.Name, *req.Value)
	if errors.Is(err, ecuflash.ErrUnknownParam) {
		log.Info("unknown parameter", slog.String("name", req.Name))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown parameter"))
		return
	}

	log.Info("parameter edit",
		slog.String("name", req.Name),
		slog.Float64("value", value),
		slog.Bool("applied", applied))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"name":    req.Name,
		"value":   value,
		"applied": applied,
	}))
}
