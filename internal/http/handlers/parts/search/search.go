// Package search реализует HTTP-обработчик поиска запчастей. Запрос
// пересылается бэкенду, фильтрация по источнику и сортировка по цене
// выполняются локально над полученным списком.
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

// Request — структура входных данных поиска запчастей.
type Request struct {
	Reference string `json:"reference" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=origine sport competition"`
	Source    string `json:"source"`
	Sort      string `json:"sort" validate:"omitempty,oneof=asc desc"`
}

// Handler обрабатывает HTTP-запросы поиска запчастей.
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
	Status  string             `json:"status"`
	Offers  []models.PartOffer `json:"offers"`
	Message string             `json:"message"`
}

// ServeHTTP godoc
// @Summary Поиск запчастей по референсу
// @Description Ищет предложения по референсу детали с фильтром по источнику и сортировкой по цене.
// @Tags Parts
// @Accept json
// @Produce json
// @Param request body Request true "Параметры поиска"
// @Success 200 {object} map[string]any "Предложения и список источников"
// @Failure 409 {object} response.ErrorResponse "Запрос уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /parts-finder [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.parts.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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
	if !h.flights.TryBegin(sid + ":parts") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("search already in progress"))
		return
	}
	defer h.flights.End(sid + ":parts")

	body := map[string]string{"reference": req.Reference}
	if req.Type != "" {
		body["type"] = req.Type
	}
	raw, err := h.gw.Call(r.Context(), http.MethodPost, "/parts_finder", body, nil)
	if err != nil {
		if errors.Is(err, gateway.ErrUnreachable) {
			log.Error("parts backend unreachable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("Parts search service is unreachable, please try again later"))
			return
		}
		log.Error("parts search failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not search for parts"))
		return
	}

	var result backendResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Error("failed to decode parts response", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not search for parts"))
		return
	}
	if result.Status == "error" {
		msg := result.Message
		if msg == "" {
			msg = "could not search for parts"
		}
		log.Info("parts search rejected", slog.String("message", msg))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(msg))
		return
	}

	sources := offers.AvailableSources(result.Offers)
	list := offers.FilterBySource(result.Offers, req.Source)
	switch req.Sort {
	case "asc":
		list = offers.SortPartsByPrice(list, false)
	case "desc":
		list = offers.SortPartsByPrice(list, true)
	}

	log.Info("parts search success",
		slog.String("reference", req.Reference),
		slog.Int("offers", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reference": req.Reference,
		"offers":    list,
		"sources":   sources,
	}))
}
