// Package flash реализует HTTP-обработчик прошивки ECU. Прошивка без
// подключенного блока отклоняется; статус и прогресс в ответе отражают
// реальный исход запроса к бэкенду.
package flash

import (
	"context"
	"errors"
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
	Flash(ctx context.Context, sid string) (ecuflash.State, error)
}

// Handler обрабатывает HTTP-запросы прошивки.
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
// @Summary Прошивка ECU
// @Description Отправляет текущие параметры тюнинга на прошивку.
// @Tags ECUFlash
// @Produce json
// @Success 200 {object} map[string]any "Состояние после прошивки"
// @Failure 409 {object} response.ErrorResponse "ECU не подключен или запрос уже выполняется"
// @Failure 502 {object} response.ErrorResponse "Прошивка не удалась"
// @Router /ecu-flash [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ecuflash.flash"
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

	state, err := h.service.Flash(r.Context(), sid)
	if err != nil {
		if errors.Is(err, ecuflash.ErrNotConnected) {
			log.Info("flash rejected, ecu not connected")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("connect the ECU before flashing"))
			return
		}
		log.Error("flash failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  err.Error(),
			Data:   map[string]any{"state": state},
		})
		return
	}

	log.Info("flash completed")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"state": state,
	}))
}
