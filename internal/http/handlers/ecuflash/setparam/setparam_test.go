package setparam

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/ecuflash"
)

// MockService реализует интерфейс setparam.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SetParam(sid, name string, value float64) (float64, bool, error) {
	args := m.Called(sid, name, value)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func TestSetParamHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "правка применена",
			requestBody: `{"name":"cartographie_injection","value":90}`,
			setupMock: func(m *MockService) {
				m.On("SetParam", "sid-1", "cartographie_injection", 90.0).
					Return(90.0, true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"name":"cartographie_injection","value":90,"applied":true}}`,
		},
		{
			name:        "значение вне диапазона отклонено",
			requestBody: `{"name":"cartographie_injection","value":150}`,
			setupMock: func(m *MockService) {
				m.On("SetParam", "sid-1", "cartographie_injection", 150.0).
					Return(100.0, false, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"name":"cartographie_injection","value":100,"applied":false}}`,
		},
		{
			name:        "ноль проходит валидацию",
			requestBody: `{"name":"avance_allumage","value":0}`,
			setupMock: func(m *MockService) {
				m.On("SetParam", "sid-1", "avance_allumage", 0.0).
					Return(0.0, true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"name":"avance_allumage","value":0,"applied":true}}`,
		},
		{
			name:        "неизвестный параметр",
			requestBody: `{"name":"nitro","value":1}`,
			setupMock: func(m *MockService) {
				m.On("SetParam", "sid-1", "nitro", 1.0).
					Return(0.0, false, ecuflash.ErrUnknownParam)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"unknown parameter"}`,
		},
		{
			name:           "отсутствует значение",
			requestBody:    `{"name":"boost_turbo"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Value is a required field"}`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    `not a json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockService)
			tt.setupMock(mockSvc)

			handler := New(logger, mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/ecu-flash/parameter",
				bytes.NewReader([]byte(tt.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			ctx := context.WithValue(req.Context(), middlewarectx.SID, "sid-1")
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockSvc.AssertExpectations(t)
		})
	}
}
