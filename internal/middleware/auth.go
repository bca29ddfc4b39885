package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

// Ключи gin.Context.
const (
	SessionKey = "session"
	UserIDKey  = "user_id"
)

// SessionVerifier проверяет токен и возвращает сессию.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (models.Session, error)
}

// AuthMiddleware требует заголовок "Authorization: Bearer <token>" и кладет
// models.Session в gin.Context и в контекст запроса.
func AuthMiddleware(verifier SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing_token", "É preciso entrar na sua conta.")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			abortUnauthorized(c, "invalid_auth_header", "Cabeçalho de autorização inválido.")
			return
		}
		authenticate(c, verifier, parts[1], log)
	}
}

// QueryTokenAuth то же для websocket: браузер не умеет передавать заголовки
// при апгрейде, поэтому токен приходит в ?token=.
func QueryTokenAuth(verifier SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			abortUnauthorized(c, "missing_token", "É preciso entrar na sua conta.")
			return
		}
		authenticate(c, verifier, token, log)
	}
}

func authenticate(c *gin.Context, verifier SessionVerifier, token string, log *zap.Logger) {
	session, err := verifier.VerifySession(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTokenExpired):
			abortUnauthorized(c, "token_expired", "Sua sessão expirou. Entre novamente.")
		case errors.Is(err, models.ErrTokenRevoked):
			abortUnauthorized(c, "session_invalidated", "Sua sessão foi encerrada. Entre novamente.")
		case errors.Is(err, models.ErrTokenInvalid):
			abortUnauthorized(c, "invalid_token", "Sessão inválida. Entre novamente.")
		default:
			log.Error("Session verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Code:      "internal_error",
				Message:   "Não foi possível verificar sua sessão. Tente novamente.",
				Retryable: true,
			})
		}
		return
	}

	c.Set(SessionKey, session)
	c.Set(UserIDKey, session.UserID)
	c.Request = c.Request.WithContext(models.ContextWithSession(c.Request.Context(), session))
	c.Next()
}

// GetSession достает сессию, положенную AuthMiddleware.
func GetSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return models.GetSessionFromContext(c.Request.Context())
	}
	s, ok := v.(models.Session)
	return s, ok
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: code, Message: message})
}
