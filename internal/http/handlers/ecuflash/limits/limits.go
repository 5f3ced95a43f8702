// Package limits реализует HTTP-обработчик загрузки диапазонов
// параметров ECU. При недоступном бэкенде действуют зашитые диапазоны.
package limits

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// Service описывает интерфейс сервиса ECU Flash.
type Service interface {
	LoadLimits(ctx context.Context, sid string) map[string]models.ParamLimit
}

// Handler обрабатывает HTTP-запросы диапазонов параметров.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Диапазоны параметров тюнинга
// @Tags ECUFlash
// @Produce json
// @Success 200 {object} map[string]any "Таблица лимитов"
// @Router /ecu-flash/limits [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid := middlewarectx.SessionID(r.Context())
	limits := h.service.LoadLimits(r.Context(), sid)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"parameters": limits,
	}))
}
