// Package connect реализует HTTP-обработчик подключения к OBD-II:
// запускается фоновый опрос телеметрии для сессии.
package connect

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/telemetry"
)

// Service описывает интерфейс сервиса телеметрии.
type Service interface {
	Connect(sid string)
	Status(sid string) telemetry.Status
}

// Handler обрабатывает HTTP-запросы подключения к OBD-II.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подключение к OBD-II
// @Description Запускает фоновый опрос телеметрии с периодом 3 секунды.
// @Tags OBD2
// @Produce json
// @Success 200 {object} map[string]any "Текущий статус телеметрии"
// @Router /obd2/connect [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.obd2.connect"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	h.service.Connect(sid)

	log.Info("telemetry polling started")
	render.JSON(w, r, response.OKWithData(h.service.Status(sid)))
}
