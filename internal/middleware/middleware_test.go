package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storybook-server/internal/auth"
	"storybook-server/internal/middleware"
	"storybook-server/internal/models"
)

const secret = "middleware-secret"

type failingVerifier struct{}

func (failingVerifier) VerifySession(context.Context, string) (models.Session, error) {
	return models.Session{}, errors.New("redis down")
}

func newRouter(t *testing.T, verifier middleware.SessionVerifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := func(c *gin.Context) {
		s, ok := middleware.GetSession(c)
		require.True(t, ok)
		fromCtx, ok := models.GetSessionFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, s.UserID, fromCtx.UserID)
		c.JSON(http.StatusOK, gin.H{"userId": s.UserID})
	}
	r.GET("/me", middleware.AuthMiddleware(verifier, zap.NewNop()), handler)
	r.GET("/ws", middleware.QueryTokenAuth(verifier, zap.NewNop()), handler)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	verifier, err := auth.NewVerifier(secret, nil, zap.NewNop())
	require.NoError(t, err)
	r := newRouter(t, verifier)

	valid, err := auth.GenerateToken(secret, 11, "", nil, time.Hour)
	require.NoError(t, err)
	expired, err := auth.GenerateToken(secret, 11, "", nil, -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "missing_token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid_auth_header"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "token_expired"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "invalid_token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				var body models.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body.Code)
				assert.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestQueryTokenAuth(t *testing.T) {
	verifier, err := auth.NewVerifier(secret, nil, zap.NewNop())
	require.NoError(t, err)
	r := newRouter(t, verifier)

	valid, err := auth.GenerateToken(secret, 11, "", nil, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+valid, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_VerifierFailure(t *testing.T) {
	r := newRouter(t, failingVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Retryable)
}

func TestZapLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.Use(middleware.ZapLogger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/health", "/ok?x=1", "/bad", "/boom"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if path == "/ok?x=1" {
			req.Header.Set("X-Request-ID", "req-1")
		}
		r.ServeHTTP(w, req)
		if path != "/health" {
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		}
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Request completed", entries[0].Message)
	assert.Equal(t, "/ok?x=1", entries[0].ContextMap()["path"])
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "Client error", entries[1].Message)
	assert.Equal(t, "Request error", entries[2].Message)
}
