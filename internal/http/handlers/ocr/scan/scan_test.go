package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/auto-assistant-client/internal/gateway"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
)

// MockGateway реализует интерфейс gateway.Caller
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	args := m.Called(ctx, method, path, body, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockGateway) CallMultipart(ctx context.Context, path, field, filename string, file io.Reader, query url.Values) (json.RawMessage, error) {
	args := m.Called(ctx, path, field, filename, file, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func multipartRequest(t *testing.T, fieldName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, "carte.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	ctx := context.WithValue(req.Context(), middlewarectx.SID, "sid-1")
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
	return req.WithContext(ctx)
}

func newHandler(gw gateway.Caller) *Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger, gw, flight.NewGroup())
}

func TestScanFillsMissingFields(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CallMultipart", mock.Anything, "/ocr", "image", "carte.jpg", mock.Anything, url.Values(nil)).
		Return(json.RawMessage(`{"vehicle_info":{"registration":"AB-123-CD","make":"Renault","owner":"J. Dupont"}}`), nil)

	w := httptest.NewRecorder()
	newHandler(gw).ServeHTTP(w, multipartRequest(t, "image"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			VehicleInfo struct {
				Registration string `json:"registration"`
				Make         string `json:"make"`
				Model        string `json:"model"`
				VIN          string `json:"vin"`
				Owner        string `json:"owner"`
			} `json:"vehicle_info"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "AB-123-CD", resp.Data.VehicleInfo.Registration)
	assert.Equal(t, "Renault", resp.Data.VehicleInfo.Make)
	assert.Equal(t, "J. Dupont", resp.Data.VehicleInfo.Owner)
	assert.Equal(t, NotDetected, resp.Data.VehicleInfo.Model, "нераспознанное поле получает подстановку")
	assert.Equal(t, NotDetected, resp.Data.VehicleInfo.VIN)
	gw.AssertExpectations(t)
}

func TestScanFullVehicleInfoPassesThrough(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CallMultipart", mock.Anything, "/ocr", "image", "carte.jpg", mock.Anything, url.Values(nil)).
		Return(json.RawMessage(`{"vehicle_info":{
			"registration":"AB-123-CD",
			"make":"Renault",
			"model":"Clio IV",
			"vin":"VF15RJL0H51234567",
			"first_registration_date":"15/03/2016",
			"owner":"J. Dupont"}}`), nil)

	w := httptest.NewRecorder()
	newHandler(gw).ServeHTTP(w, multipartRequest(t, "image"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			VehicleInfo map[string]string `json:"vehicle_info"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	expected := map[string]string{
		"registration":            "AB-123-CD",
		"make":                    "Renault",
		"model":                   "Clio IV",
		"vin":                     "VF15RJL0H51234567",
		"first_registration_date": "15/03/2016",
		"owner":                   "J. Dupont",
	}
	assert.Equal(t, expected, resp.Data.VehicleInfo, "каждое распознанное поле доходит до клиента без подстановок")
}

func TestScanMissingFile(t *testing.T) {
	gw := new(MockGateway)

	w := httptest.NewRecorder()
	newHandler(gw).ServeHTTP(w, multipartRequest(t, "photo"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"field image is required"}`, w.Body.String())
	gw.AssertNotCalled(t, "CallMultipart")
}

func TestScanBackendUnreachable(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CallMultipart", mock.Anything, "/ocr", "image", "carte.jpg", mock.Anything, url.Values(nil)).
		Return(nil, fmt.Errorf("%w: dial tcp", gateway.ErrUnreachable))

	w := httptest.NewRecorder()
	newHandler(gw).ServeHTTP(w, multipartRequest(t, "image"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "OCR service is unreachable")
}

func TestScanDomainError(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CallMultipart", mock.Anything, "/ocr", "image", "carte.jpg", mock.Anything, url.Values(nil)).
		Return(json.RawMessage(`{"error":"document illisible"}`), nil)

	w := httptest.NewRecorder()
	newHandler(gw).ServeHTTP(w, multipartRequest(t, "image"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"document illisible"}`, w.Body.String())
}
