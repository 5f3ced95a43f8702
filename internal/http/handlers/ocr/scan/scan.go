// Package scan реализует HTTP-обработчик распознавания карты регистрации.
//
// Файл изображения пересылается бэкенду одной частью multipart-формы,
// отсутствующие в ответе поля заполняются подстановкой "Not detected".
package scan

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/auto-assistant-client/internal/gateway"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/response"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

const maxUploadSize = 10 << 20

// NotDetected подставляется вместо полей, не распознанных бэкендом.
const NotDetected = "Not detected"

// Handler обрабатывает HTTP-запросы распознавания документа.
type Handler struct {
	log     *slog.Logger
	gw      gateway.Caller
	flights *flight.Group
}

// New создает новый Handler.
func New(log *slog.Logger, gw gateway.Caller, flights *flight.Group) *Handler {
	return &Handler{log: log, gw: gw, flights: flights}
}

type backendResult struct {
	VehicleInfo map[string]string `json:"vehicle_info"`
	Error       string            `json:"error"`
}

// ServeHTTP godoc
// @Summary Распознавание карты регистрации
// @Description Принимает изображение документа и возвращает данные автомобиля.
// @Tags OCR
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Изображение документа"
// @Success 200 {object} map[string]any "Данные автомобиля"
// @Failure 409 {object} response.ErrorResponse "Запрос уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Файл не передан"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /ocr [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ocr.scan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionID(r.Context())
	if !h.flights.TryBegin(sid + ":ocr") {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("scan already in progress"))
		return
	}
	defer h.flights.End(sid + ":ocr")

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

	raw, err := h.gw.CallMultipart(r.Context(), "/ocr", "image", header.Filename, file, nil)
	if err != nil {
		if errors.Is(err, gateway.ErrUnreachable) {
			log.Error("ocr backend unreachable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("OCR service is unreachable, please try again later"))
			return
		}
		log.Error("ocr request failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not analyze the document"))
		return
	}

	var result backendResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Error("failed to decode ocr response", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not analyze the document"))
		return
	}
	if result.Error != "" {
		log.Info("ocr rejected the document", slog.String("error", result.Error))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(result.Error))
		return
	}

	info := models.VehicleInfo{
		Registration:          fieldOr(result.VehicleInfo, "registration"),
		Make:                  fieldOr(result.VehicleInfo, "make"),
		Model:                 fieldOr(result.VehicleInfo, "model"),
		VIN:                   fieldOr(result.VehicleInfo, "vin"),
		FirstRegistrationDate: fieldOr(result.VehicleInfo, "first_registration_date"),
		Owner:                 fieldOr(result.VehicleInfo, "owner"),
	}

	log.Info("ocr success", slog.String("registration", info.Registration))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"vehicle_info": info,
	}))
}

func fieldOr(fields map[string]string, key string) string {
	if v := fields[key]; v != "" {
		return v
	}
	return NotDetected
}
