// Package disconnect реализует HTTP-обработчик отключения от OBD-II:
// фоновый опрос телеметрии для сессии останавливается.
package disconnect

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
	Disconnect(sid string)
	Status(sid string) telemetry.Status
}

// Handler обрабатывает HTTP-запросы отключения от OBD-II.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отключение от OBD-II
// @Tags OBD2
// @Produce json
// @Success 200 {object} map[string]any "Статус после остановки опроса"
// @Router /obd2/disconnect [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.obd2.disconnect"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	h.service.Disconnect(sid)

	log.Info("telemetry polling stopped")
	render.JSON(w, r, response.OKWithData(h.service.Status(sid)))
}
