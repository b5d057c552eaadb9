package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/lshigami/examhub/config"
	"github.com/lshigami/examhub/internal/dto"
	"github.com/rs/zerolog/log"
)

// ContextUserID is the gin context key holding the authenticated account id.
const ContextUserID = "userID"

const bearerPrefix = "Bearer "

// GenerateToken signs an HS256 token whose subject is the account id.
func GenerateToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth rejects requests without a valid bearer token and stores the token subject
// under ContextUserID.
type Auth struct {
	secret []byte
}

func NewAuth(cfg *config.Config) *Auth {
	return &Auth{secret: []byte(cfg.Auth.JWTSecret)}
}

func (a *Auth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "missing or invalid Authorization header"})
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, bearerPrefix), claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			log.Warn().Err(err).Str("path", c.FullPath()).Msg("Auth: Rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid or expired token"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token has no subject"})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Next()
	}
}

// UserID returns the authenticated account id, or "" outside the Auth middleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
