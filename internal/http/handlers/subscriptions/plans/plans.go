// Package plans реализует HTTP-обработчик каталога тарифов. При
// недоступном бэкенде отдается резервный каталог с соответствующим
// признаком в ответе.
package plans

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// Service описывает интерфейс сервиса подписок.
type Service interface {
	Plans(ctx context.Context) ([]models.Plan, bool)
}

// Handler обрабатывает HTTP-запросы каталога тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} map[string]any "Тарифы и признак резервного каталога"
// @Router /subscribe/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	plans, fallback := h.service.Plans(r.Context())
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans":    plans,
		"fallback": fallback,
	}))
}
