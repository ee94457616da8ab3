package middleware

import (
	"net/http"
	"strings"
	"time"

	"eventhub/internal/logger"
	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Claims - полезная нагрузка токена, выпущенного сервисом авторизации
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Auth проверяет HS256 токен из заголовка Authorization или cookie и
// сохраняет личность пользователя в контексте gin и логгера
func Auth(secret, cookieName string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		raw := bearerToken(c, cookieName)
		if raw == "" {
			abortWith(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		identity, err := parseIdentity(raw, key)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("Rejected token", "error", err, "client_ip", c.ClientIP())
			abortWith(c, http.StatusUnauthorized, "Not authorized, invalid token")
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), identity.UserID.String()))

		c.Next()
	}
}

// RequireAdmin пропускает только администраторов; ставится после Auth
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		if !identity.IsAdmin {
			abortWith(c, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		c.Next()
	}
}

// IdentityFrom возвращает личность, установленную Auth
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

// IssueToken подписывает токен с теми же claims, что проверяет Auth.
// Боевые токены выпускает сервис авторизации; это для smoke-проверок и тестов.
func IssueToken(secret string, identity models.Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:  identity.UserID.String(),
		IsAdmin: identity.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(c *gin.Context, cookieName string) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

func parseIdentity(raw string, key []byte) (models.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Identity{}, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{UserID: userID, IsAdmin: claims.IsAdmin}, nil
}

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.MessageResponse{Success: false, Message: message})
}
