package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

// Claims полезная нагрузка access-токена. Токены выпускает внешний сервис
// аутентификации, здесь они только проверяются.
type Claims struct {
	UserID       int64    `json:"user_id"`
	Plan         string   `json:"plan,omitempty"`
	Entitlements []string `json:"entitlements,omitempty"`
	jwt.RegisteredClaims
}

// Revoker хранилище отозванных токенов.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Verifier превращает bearer-токен в models.Session.
type Verifier struct {
	secret  []byte
	revoker Revoker
	logger  *zap.Logger
	now     func() time.Time
}

// NewVerifier создает проверяющего. revoker может быть nil, тогда отзыв не проверяется.
func NewVerifier(secret string, revoker Revoker, logger *zap.Logger) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		secret:  []byte(secret),
		revoker: revoker,
		logger:  logger.Named("JWTVerifier"),
		now:     time.Now,
	}, nil
}

// VerifySession проверяет подпись, срок и отзыв токена.
func (v *Verifier) VerifySession(ctx context.Context, tokenString string) (models.Session, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		log.Warn("Failed to parse or verify token", zap.Error(err))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Session{}, models.ErrTokenExpired
		}
		return models.Session{}, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return models.Session{}, models.ErrTokenInvalid
	}
	if claims.UserID <= 0 {
		log.Warn("Token missing UserID")
		return models.Session{}, fmt.Errorf("%w: UserID missing", models.ErrTokenInvalid)
	}

	if v.revoker != nil && claims.ID != "" {
		revoked, err := v.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			// хранилище недоступно: сессию не пропускаем
			log.Error("Revocation check failed", zap.Error(err))
			return models.Session{}, fmt.Errorf("%w: revocation check: %v", models.ErrInternalServer, err)
		}
		if revoked {
			log.Info("Revoked token presented", zap.Int64("userID", claims.UserID))
			return models.Session{}, models.ErrTokenRevoked
		}
	}

	session := models.Session{
		UserID:       claims.UserID,
		Plan:         claims.Plan,
		Entitlements: claims.Entitlements,
		TokenID:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	log.Debug("Token verified successfully", zap.Int64("userID", session.UserID))
	return session, nil
}

// Invalidate отзывает токен сессии до конца его срока.
func (v *Verifier) Invalidate(ctx context.Context, session models.Session) error {
	if v.revoker == nil {
		return errors.New("revocation store is not configured")
	}
	if session.TokenID == "" {
		return fmt.Errorf("%w: token has no id", models.ErrTokenInvalid)
	}
	ttl := 24 * time.Hour
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(v.now())
	}
	return v.revoker.Revoke(ctx, session.TokenID, ttl)
}

// GenerateToken подписывает токен. Используется в тестах и локальной отладке.
func GenerateToken(secret string, userID int64, plan string, entitlements []string, validity time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID,
		Plan:         plan,
		Entitlements: entitlements,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// tokenSnippet безопасная для логов часть токена.
func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
