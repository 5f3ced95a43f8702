// Package disconnectecu реализует HTTP-обработчик отключения от ECU.
package disconnectecu

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/ecuflash"
)

// Service описывает интерфейс сервиса ECU Flash.
type Service interface {
	Disconnect(sid string) ecuflash.State
}

// Handler обрабатывает HTTP-запросы отключения от ECU.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отключение от ECU
// @Tags ECUFlash
// @Produce json
// @Success 200 {object} map[string]any "Состояние представления"
// @Router /ecu-flash/disconnect [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ecuflash.disconnectecu"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	state := h.service.Disconnect(sid)

	log.Info("ecu disconnected")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"state": state,
	}))
}
