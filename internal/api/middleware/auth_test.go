package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relia-oss/relia-api/internal/config"
	"github.com/relia-oss/relia-api/internal/service/auth"
	"github.com/relia-oss/relia-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

func newJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	return svc
}

// echoUserHandler writes the user ID the middleware put in the context.
func echoUserHandler(t *testing.T, gotUser *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		require.True(t, ok)
		*gotUser = userID
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	svc := newJWTService(t)
	token, err := svc.GenerateToken(context.Background(), "user-1")
	require.NoError(t, err)

	var gotUser string
	handler := NewAuthMiddleware(svc).Authenticate(echoUserHandler(t, &gotUser))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUser)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	t.Parallel()

	svc := newJWTService(t)
	handler := NewAuthMiddleware(svc).Authenticate(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		}))

	testCases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	t.Parallel()

	var gotUser string
	handler := NewAuthMiddleware(nil).Authenticate(echoUserHandler(t, &gotUser))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, task.AnonymousUser, gotUser)
}
