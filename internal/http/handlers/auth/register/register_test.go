package register

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "успешная регистрация",
			requestBody: Request{
				Name:            "Jean Dupont",
				Email:           "jean@example.com",
				Password:        "secret123",
				ConfirmPassword: "secret123",
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"OK"`)
				assert.Contains(t, body, "Registration successful")
			},
		},
		{
			name: "пароль короче шести символов",
			requestBody: Request{
				Name:            "Jean",
				Email:           "jean@example.com",
				Password:        "abc",
				ConfirmPassword: "abc",
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "field Password is too short")
			},
		},
		{
			name: "подтверждение не совпадает",
			requestBody: Request{
				Name:            "Jean",
				Email:           "jean@example.com",
				Password:        "secret123",
				ConfirmPassword: "secret124",
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "field ConfirmPassword does not match")
			},
		},
		{
			name:           "пустая форма",
			requestBody:    Request{},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "field Name is a required field")
				assert.Contains(t, body, "field Email is a required field")
			},
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"invalid request body"}`, body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := New(logger)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, w.Body.String())
		})
	}
}
