// Package connectecu реализует HTTP-обработчик подключения к ECU.
// При успехе сразу читается текущая карта; отказ возвращается вместе
// с актуальным состоянием представления.
package connectecu

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/ecuflash"
)

// Service описывает интерфейс сервиса ECU Flash.
type Service interface {
	Connect(ctx context.Context, sid string) (ecuflash.State, error)
}

// Handler обрабатывает HTTP-запросы подключения к ECU.
type Handler struct {
	log     *slog.Logger
	service Service
	flights *flight.Group
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, flights *flight.Group) *Handler {
	return &Handler{log: log, service: service, flights: flights}
}

// ServeHTTP godoc
// @Summary Подключение к ECU
// @Tags ECUFlash
// @Produce json
// @Success 200 {object} map[string]any "Состояние представления"
// @Failure 409 {object} response.ErrorResponse "Запрос уже выполняется"
// @Failure 502 {object} response.ErrorResponse "ECU недоступен"
// @Router /ecu-flash/connect [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ecuflash.connectecu"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	if !h.flights.TryBegin(sid + ":ecuflash") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("operation already in progress"))
		return
	}
	defer h.flights.End(sid + ":ecuflash")

	state, err := h.service.Connect(r.Context(), sid)
	if err != nil {
		log.Error("ecu connect failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  err.Error(),
			Data:   map[string]any{"state": state},
		})
		return
	}

	log.Info("ecu connected")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"state": state,
	}))
}
