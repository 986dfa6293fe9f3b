package delivery

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"habitflow-backend/internal/push/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const senderTokenIssuer = "habitflow-push"

// SenderAuthMiddleware protects routes that trigger deliveries. With an empty
// secret it lets every request through.
func SenderAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid authorization header format"})
			c.Abort()
			return
		}

		subject, err := ValidateSenderToken(secret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("sender", subject)
		c.Next()
	}
}

// IssueSenderToken mints an HS256 token accepted by SenderAuthMiddleware
func IssueSenderToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    senderTokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSenderToken verifies signature, issuer and expiry and returns the subject
func ValidateSenderToken(secret, tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(senderTokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid sender token: %w", err)
	}
	return claims.Subject, nil
}
