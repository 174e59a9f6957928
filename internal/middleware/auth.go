package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"

	"plantation-manager/backend/internal/config"
)

// Claims is the token body issued by the identity service. The caller id is
// read from user_id, falling back to the standard subject.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) userID() (uuid.UUID, error) {
	raw := c.UserID
	if raw == "" {
		raw = c.Subject
	}
	id, err := uuid.FromString(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.New("token carries no valid user id")
	}
	return id, nil
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// Authenticate validates an HMAC bearer token and stores the caller id as
// a string under "user_id".
func Authenticate(cfg config.AuthConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing_token", "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "invalid_token_format", "Authorization header must use Bearer token")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			abortUnauthorized(c, "expired_token", "Token has expired")
			return
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			abortUnauthorized(c, "invalid_issuer", "Token issuer is invalid")
			return
		case err != nil:
			abortUnauthorized(c, "invalid_token", "Token validation failed")
			return
		}

		userID, err := claims.userID()
		if err != nil {
			abortUnauthorized(c, "invalid_claims", "Token claims are invalid")
			return
		}

		c.Set("user_id", userID.String())
		c.Next()
	}
}

// IssueToken signs an HS256 token for userID. The service itself never logs
// users in; this exists for operator tooling and tests.
func IssueToken(cfg config.AuthConfig, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}
