// Package snapshot реализует HTTP-обработчик чтения последнего снимка
// телеметрии OBD-II. Снимок берется из локального состояния опроса,
// запрос к бэкенду не выполняется.
package snapshot

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/telemetry"
)

// Service описывает интерфейс сервиса телеметрии.
type Service interface {
	Status(sid string) telemetry.Status
}

// Handler обрабатывает HTTP-запросы снимка телеметрии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Последний снимок телеметрии
// @Tags OBD2
// @Produce json
// @Success 200 {object} map[string]any "Снимок и статус подключения"
// @Router /obd2 [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid := middlewarectx.SessionID(r.Context())
	render.JSON(w, r, response.OKWithData(h.service.Status(sid)))
}
