package login

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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
	authservice "github.com/magabrotheeeer/auto-assistant-client/internal/services/auth"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(email, rawPassword string) (models.User, string, error) {
	args := m.Called(email, rawPassword)
	return args.Get(0).(models.User), args.String(1), args.Error(2)
}

// MockSessions реализует интерфейс login.Sessions
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Save(ctx context.Context, sid string, user models.User, token string) error {
	args := m.Called(ctx, sid, user, token)
	return args.Error(0)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	demoUser := models.User{
		Email:              "demo@example.com",
		Name:               "Utilisateur Démo",
		SubscriptionType:   "premium",
		SubscriptionStatus: "active",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(*MockService, *MockSessions)
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "успешный вход",
			requestBody: Request{Email: "demo@example.com", Password: "password"},
			setupMocks: func(svc *MockService, sessions *MockSessions) {
				svc.On("Login", "demo@example.com", "password").
					Return(demoUser, "jwt-token", nil)
				sessions.On("Save", mock.Anything, "sid-1", demoUser, "jwt-token").
					Return(nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"OK"`)
				assert.Contains(t, body, `"email":"demo@example.com"`)
			},
		},
		{
			name:        "неверные учетные данные",
			requestBody: Request{Email: "demo@example.com", Password: "wrong"},
			setupMocks: func(svc *MockService, _ *MockSessions) {
				svc.On("Login", "demo@example.com", "wrong").
					Return(models.User{}, "", authservice.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"incorrect email or password"}`, body)
			},
		},
		{
			name:           "ошибка валидации - пустые поля не доходят до сервиса",
			requestBody:    Request{Email: "", Password: ""},
			setupMocks:     func(_ *MockService, _ *MockSessions) {},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "field Email is a required field")
				assert.Contains(t, body, "field Password is a required field")
			},
		},
		{
			name:           "некорректный email",
			requestBody:    Request{Email: "not-an-email", Password: "password"},
			setupMocks:     func(_ *MockService, _ *MockSessions) {},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "field Email must be a valid email address")
			},
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMocks:     func(_ *MockService, _ *MockSessions) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"invalid request body"}`, body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockService)
			mockSessions := new(MockSessions)
			tt.setupMocks(mockSvc, mockSessions)

			handler := New(logger, mockSvc, mockSessions)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.SID, "sid-1")
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, w.Body.String())
			mockSvc.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
		})
	}
}
