// Package search реализует HTTP-обработчик поиска картографий у
// партнеров-препараторов. Модуль доступен только при активной подписке;
// сортировка и фильтр по цене применяются локально над полученным списком.
package search

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/auto-assistant-client/internal/gateway"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/offers"
)

// Request — структура входных данных поиска картографий.
type Request struct {
	Query    string   `json:"query" validate:"required"`
	Category string   `json:"category" validate:"omitempty,oneof=origine sport competition eco"`
	SortBy   string   `json:"sort_by" validate:"omitempty,oneof=default price-asc price-desc rating"`
	PriceMin *float64 `json:"price_min"`
	PriceMax *float64 `json:"price_max"`
}

// Handler обрабатывает HTTP-запросы поиска картографий.
type Handler struct {
	log      *slog.Logger
	gw       gateway.Caller
	flights  *flight.Group
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, gw gateway.Caller, flights *flight.Group) *Handler {
	return &Handler{log: log, gw: gw, flights: flights, validate: validator.New()}
}

type backendResult struct {
	Offers []models.MapOffer `json:"offers"`
	Error  string            `json:"error"`
}

// ServeHTTP godoc
// @Summary Поиск картографий у препараторов
// @Description Ищет партнерские предложения картографий по модели автомобиля.
// @Tags Mapping
// @Accept json
// @Produce json
// @Param request body Request true "Параметры поиска"
// @Success 200 {object} map[string]any "Список предложений"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 409 {object} response.ErrorResponse "Запрос уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /mapping-affiliations [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mapping.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.CurrentUser(r.Context())
	if user == nil || user.SubscriptionStatus != "active" {
		log.Info("mapping search without active subscription")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("an active subscription is required"))
		return
	}

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
	if !h.flights.TryBegin(sid + ":mapping") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("search already in progress"))
		return
	}
	defer h.flights.End(sid + ":mapping")

	body := map[string]any{"query": req.Query}
	if req.Category != "" {
		body["category"] = req.Category
	}
	raw, err := h.gw.Call(r.Context(), http.MethodPost, "/mapping_affiliations", body, nil)
	if err != nil {
		if errors.Is(err, gateway.ErrUnreachable) {
			log.Error("mapping backend unreachable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("Mapping search service is unreachable, please try again later"))
			return
		}
		log.Error("mapping search failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not search for maps"))
		return
	}

	var result backendResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Error("failed to decode mapping response", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not search for maps"))
		return
	}
	if result.Error != "" {
		log.Info("mapping search rejected", slog.String("error", result.Error))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(result.Error))
		return
	}

	list := offers.FilterPriceRange(result.Offers, req.PriceMin, req.PriceMax)
	list = offers.Sort(list, req.SortBy)

	log.Info("mapping search success",
		slog.String("query", req.Query),
		slog.Int("offers", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"query":           req.Query,
		"offers":          list,
		"popular_queries": offers.PopularQueries,
	}))
}
