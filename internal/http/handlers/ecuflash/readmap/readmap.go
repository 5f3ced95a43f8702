// Package readmap реализует HTTP-обработчик чтения текущей карты ECU.
package readmap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/ecuflash"
)

// Service описывает интерфейс сервиса ECU Flash.
type Service interface {
	Read(ctx context.Context, sid string) (ecuflash.State, error)
}

// Handler обрабатывает HTTP-запросы чтения карты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Чтение текущей карты ECU
// @Tags ECUFlash
// @Produce json
// @Success 200 {object} map[string]any "Состояние представления"
// @Failure 502 {object} response.ErrorResponse "ECU недоступен"
// @Router /ecu-flash/read [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ecuflash.readmap"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	state, err := h.service.Read(r.Context(), sid)
	if err != nil {
		log.Error("ecu read failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  err.Error(),
			Data:   map[string]any{"state": state},
		})
		return
	}

	log.Info("ecu map read")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"state": state,
	}))
}
