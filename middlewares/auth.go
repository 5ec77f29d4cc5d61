package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// DeviceIDKey is the gin context key holding the authenticated device.
const DeviceIDKey = "device_id"

// IssueDeviceToken signs an HS256 token that lets deviceID post readings.
func IssueDeviceToken(secret []byte, deviceID string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("INGEST_SECRET not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"device_id": deviceID,
		"exp":       time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// DeviceAuth validates the device token from the Authorization header or the
// token query parameter.
func DeviceAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "INGEST_SECRET not configured"})
			return
		}

		var tokenString string
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		// Fallback for devices that cannot set headers (e.g. ?token=abc123).
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		deviceID, ok := claims["device_id"].(string)
		if !ok || deviceID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token payload"})
			return
		}

		c.Set(DeviceIDKey, deviceID)
		c.Next()
	}
}
