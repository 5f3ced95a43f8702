package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/auto-assistant-client/internal/cache"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/jwt"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
	"github.com/magabrotheeeer/auto-assistant-client/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testStore() (*session.Store, *jwt.MakerImpl) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return session.New(cache.NewMemory(), maker, time.Hour, testLogger()), maker
}

func TestSessionContextIssuesCookie(t *testing.T) {
	store, _ := testStore()

	var gotSID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotSID = SessionID(r.Context())
		assert.Nil(t, CurrentUser(r.Context()))
	})

	handler := SessionContext(store, "assistant_session", testLogger())(next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, gotSID)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "assistant_session", cookies[0].Name)
	assert.Equal(t, gotSID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionContextLoadsAuthenticatedUser(t *testing.T) {
	store, maker := testStore()
	user := models.User{Email: "demo@example.com", Name: "Utilisateur Démo"}
	token, err := maker.GenerateToken(user.Email, "premium")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "sid-1", user, token))

	var gotUser *models.User
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser = CurrentUser(r.Context())
		assert.Equal(t, "sid-1", SessionID(r.Context()))
	})

	handler := SessionContext(store, "assistant_session", testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "assistant_session", Value: "sid-1"})

	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, gotUser)
	assert.Equal(t, user, *gotUser)
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		expectedStatus int
		nextCalled     bool
	}{
		{
			name:           "аутентифицированная сессия проходит",
			user:           &models.User{Email: "demo@example.com"},
			expectedStatus: http.StatusOK,
			nextCalled:     true,
		},
		{
			name:           "аноним получает 401",
			user:           nil,
			expectedStatus: http.StatusUnauthorized,
			nextCalled:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			handler := RequireAuth(testLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/obd2", nil)
			ctx := context.WithValue(req.Context(), SID, "sid-1")
			if tt.user != nil {
				ctx = context.WithValue(ctx, User, tt.user)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.nextCalled, called)
			if !tt.nextCalled {
				assert.JSONEq(t, `{"status":"Error","error":"authentication required"}`, w.Body.String())
			}
		})
	}
}
