// Package analyze реализует HTTP-обработчик распознавания изображений
// деталей. Файл пересылается бэкенду multipart-формой, тип анализа
// передается параметром запроса; структура результата возвращается
// клиенту без пересборки.
package analyze

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/gateway"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
)

const maxUploadSize = 10 << 20

// DefaultAnalysisType используется, когда тип анализа не передан.
const DefaultAnalysisType = "piece"

// Handler обрабатывает HTTP-запросы анализа изображения.
type Handler struct {
	log     *slog.Logger
	gw      gateway.Caller
	flights *flight.Group
}

// New создает новый Handler.
func New(log *slog.Logger, gw gateway.Caller, flights *flight.Group) *Handler {
	return &Handler{log: log, gw: gw, flights: flights}
}

// ServeHTTP godoc
// @Summary Анализ изображения детали
// @Description Принимает фото детали и тип анализа, возвращает результат распознавания.
// @Tags Image
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Фото детали"
// @Param type query string false "Тип анализа"
// @Success 200 {object} map[string]any "Результат анализа"
// @Failure 409 {object} response.ErrorResponse "Запрос уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Файл не передан"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /image-recognition [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.image.analyze"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	if !h.flights.TryBegin(sid + ":image") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("analysis already in progress"))
		return
	}
	defer h.flights.End(sid + ":image")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		log.Error("image file is missing", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field image is required"))
		return
	}
	defer file.Close()

	analysisType := r.URL.Query().Get("type")
	if analysisType == "" {
		analysisType = DefaultAnalysisType
	}
	query := url.Values{"type": []string{analysisType}}

	raw, err := h.gw.CallMultipart(r.Context(), "/image_recognition", "image", header.Filename, file, query)
	if err != nil {
		if errors.Is(err, gateway.ErrUnreachable) {
			log.Error("image backend unreachable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("Image recognition service is unreachable, please try again later"))
			return
		}
		log.Error("image analysis failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not analyze the image"))
		return
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Error("failed to decode analysis response", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not analyze the image"))
		return
	}
	if errMsg, ok := result["error"]; ok {
		var msg string
		_ = json.Unmarshal(errMsg, &msg)
		if msg != "" {
			log.Info("analysis rejected", slog.String("error", msg))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(msg))
			return
		}
	}

	log.Info("analysis success", slog.String("type", analysisType))
	render.JSON(w, r, response.OKWithData(result))
}
